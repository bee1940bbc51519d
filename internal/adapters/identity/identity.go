// Package identity supplies stable subject identifiers for judge and voter
// sessions. Identity issuance itself is an external concern; this package
// only defines the boundary and the anonymous fallback.
package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Provider yields the subject id every write is attributed to. The id must
// be stable for the lifetime of a session.
type Provider interface {
	SubjectID(ctx context.Context) (string, error)
}

// Anonymous issues one random subject id per process session. Anonymous
// sessions are acceptable: the id is stable from first use until exit.
type Anonymous struct {
	once sync.Once
	id   string
}

// NewAnonymous creates an anonymous identity provider.
func NewAnonymous() *Anonymous {
	return &Anonymous{}
}

// SubjectID implements Provider.
func (a *Anonymous) SubjectID(ctx context.Context) (string, error) {
	a.once.Do(func() {
		a.id = uuid.NewString()
	})
	return a.id, nil
}

// Static is a fixed subject id supplied by an upstream authenticator.
type Static string

// SubjectID implements Provider.
func (s Static) SubjectID(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSubject
	}
	return string(s), nil
}

type ctxKey struct{}

// WithSubject returns a context carrying an explicit subject id, typically
// taken from an upstream authentication header.
func WithSubject(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// Contextual prefers a subject id carried on the context and falls back to
// the wrapped provider otherwise.
type Contextual struct {
	Fallback Provider
}

// SubjectID implements Provider.
func (c Contextual) SubjectID(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id, nil
	}
	if c.Fallback == nil {
		return "", ErrNoSubject
	}
	return c.Fallback.SubjectID(ctx)
}

var (
	_ Provider = (*Anonymous)(nil)
	_ Provider = Static("")
	_ Provider = Contextual{}
)
