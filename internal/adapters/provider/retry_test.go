package provider

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetriable(t *testing.T) {
	Convey("Given the retriable classification", t, func() {
		Convey("Then timeouts, resets and DNS failures are retriable", func() {
			So(Retriable(context.DeadlineExceeded), ShouldBeTrue)
			So(Retriable(timeoutErr{}), ShouldBeTrue)
			So(Retriable(&net.DNSError{Err: "no such host"}), ShouldBeTrue)
			So(Retriable(syscall.ECONNRESET), ShouldBeTrue)
		})

		Convey("Then HTTP status answers are not", func() {
			So(Retriable(&StatusError{Code: 404, URL: "http://x"}), ShouldBeFalse)
			So(Retriable(&StatusError{Code: 503, URL: "http://x"}), ShouldBeFalse)
		})

		Convey("Then plain errors and nil are not", func() {
			So(Retriable(errors.New("boom")), ShouldBeFalse)
			So(Retriable(nil), ShouldBeFalse)
		})
	})
}

func TestRetryPolicyDo(t *testing.T) {
	Convey("Given a retry policy with three attempts", t, func() {
		policy := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}
		ctx := context.Background()

		Convey("When the call succeeds on the second attempt", func() {
			calls := 0
			err := policy.Do(ctx, "test", func(context.Context) error {
				calls++
				if calls == 1 {
					return timeoutErr{}
				}
				return nil
			})

			Convey("Then it retries and succeeds", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 2)
			})
		})

		Convey("When every attempt times out", func() {
			calls := 0
			err := policy.Do(ctx, "test", func(context.Context) error {
				calls++
				return timeoutErr{}
			})

			Convey("Then all attempts are used and the error surfaces", func() {
				So(err, ShouldNotBeNil)
				So(calls, ShouldEqual, 3)
			})
		})

		Convey("When the failure is not retriable", func() {
			calls := 0
			err := policy.Do(ctx, "test", func(context.Context) error {
				calls++
				return &StatusError{Code: 404, URL: "http://x"}
			})

			Convey("Then it fails immediately", func() {
				var statusErr *StatusError
				So(errors.As(err, &statusErr), ShouldBeTrue)
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When the context is cancelled between attempts", func() {
			cancelled, cancel := context.WithCancel(ctx)
			calls := 0
			err := policy.Do(cancelled, "test", func(context.Context) error {
				calls++
				cancel()
				return timeoutErr{}
			})

			Convey("Then the cancellation wins", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(calls, ShouldEqual, 1)
			})
		})
	})
}
