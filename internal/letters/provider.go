// Package letters generates application text (cover letters, chat replies)
// for stored records that do not have one yet.
package letters

import (
	"context"
	"errors"

	"github.com/marek/jobscout/internal/store"
)

// ErrNothingPending indicates every record already has an artifact of the
// requested kind.
var ErrNothingPending = errors.New("no records pending generation")

// Provider produces one generated text for a record. Kind names the artifact
// family it writes, so different providers can cover the same record.
type Provider interface {
	Kind() string
	Generate(ctx context.Context, rec *store.Record) (text, modelVersion string, err error)
}
