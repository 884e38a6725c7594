package natsadapter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	streamRetention = 7 * 24 * time.Hour
	dedupWindow     = 2 * time.Minute
)

// streams are the JetStream streams routeye publishes into.
var streams = []nats.StreamConfig{
	{Name: "ROUTES", Subjects: []string{SubjectRouteEvents}},
	{Name: "GEOZONES", Subjects: []string{subjectGeozonePrefix + ">"}},
}

// ensureStreams creates each stream, or updates it when it already exists.
func ensureStreams(js nats.JetStreamManager) error {
	for _, s := range streams {
		cfg := s
		cfg.Retention = nats.LimitsPolicy
		cfg.Storage = nats.FileStorage
		cfg.MaxAge = streamRetention
		cfg.Duplicates = dedupWindow

		_, err := js.AddStream(&cfg)
		if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			_, err = js.UpdateStream(&cfg)
		}
		if err != nil {
			return fmt.Errorf("stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// streamFor returns the stream capturing subject, or "" when none does.
func streamFor(subject string) string {
	for _, s := range streams {
		for _, filter := range s.Subjects {
			if subjectMatches(filter, subject) {
				return s.Name
			}
		}
	}
	return ""
}

// subjectMatches applies NATS wildcard rules: "*" matches one token,
// a trailing ">" matches one or more.
func subjectMatches(filter, subject string) bool {
	f := strings.Split(filter, ".")
	s := strings.Split(subject, ".")
	for i, tok := range f {
		if tok == ">" {
			return len(s) > i
		}
		if i >= len(s) || (tok != "*" && tok != s[i]) {
			return false
		}
	}
	return len(f) == len(s)
}
