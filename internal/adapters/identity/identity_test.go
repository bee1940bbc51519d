package identity_test

import (
	"context"
	"testing"

	"github.com/okian/jury/internal/adapters/identity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnonymous(t *testing.T) {
	Convey("Given an anonymous provider", t, func() {
		p := identity.NewAnonymous()
		ctx := context.Background()

		Convey("When asking for the subject id twice", func() {
			first, err1 := p.SubjectID(ctx)
			second, err2 := p.SubjectID(ctx)

			Convey("Then the id is stable for the session", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldNotBeEmpty)
				So(second, ShouldEqual, first)
			})
		})

		Convey("When two sessions exist", func() {
			other := identity.NewAnonymous()
			a, _ := p.SubjectID(ctx)
			b, _ := other.SubjectID(ctx)

			Convey("Then their ids differ", func() {
				So(a, ShouldNotEqual, b)
			})
		})
	})
}

func TestContextual(t *testing.T) {
	Convey("Given a contextual provider over a static fallback", t, func() {
		p := identity.Contextual{Fallback: identity.Static("judge-default")}

		Convey("When the context carries a subject id", func() {
			ctx := identity.WithSubject(context.Background(), "judge-9")
			id, err := p.SubjectID(ctx)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "judge-9")
		})

		Convey("When the context carries nothing", func() {
			id, err := p.SubjectID(context.Background())
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "judge-default")
		})

		Convey("When an empty id is attached", func() {
			ctx := identity.WithSubject(context.Background(), "")
			id, err := p.SubjectID(ctx)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "judge-default")
		})

		Convey("When there is no fallback either", func() {
			_, err := identity.Contextual{}.SubjectID(context.Background())
			So(err, ShouldEqual, identity.ErrNoSubject)
		})
	})
}

func TestStatic(t *testing.T) {
	Convey("Given a static provider", t, func() {
		ctx := context.Background()

		Convey("When a subject id was configured", func() {
			id, err := identity.Static("judge-7").SubjectID(ctx)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "judge-7")
		})

		Convey("When the configured id is empty", func() {
			_, err := identity.Static("").SubjectID(ctx)
			So(err, ShouldEqual, identity.ErrNoSubject)
		})
	})
}
