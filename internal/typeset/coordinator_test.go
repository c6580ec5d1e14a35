package typeset_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-sheets/internal/typeset"
)

// hang never completes and ignores its context, like a typesetting script
// that never finished loading.
func hang(block chan struct{}) typeset.Func {
	return func(ctx context.Context, html string) (string, error) {
		<-block
		return "late:" + html, nil
	}
}

func waitFor(t *testing.T, c *typeset.Coordinator) typeset.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	o, err := c.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	return o
}

func TestCoordinatorReady(t *testing.T) {
	ts := typeset.Func(func(ctx context.Context, html string) (string, error) {
		return strings.ReplaceAll(html, `\(x\)`, "<mjx>x</mjx>"), nil
	})
	c := typeset.NewCoordinator(ts, typeset.WithTimeout(time.Second))
	tok := c.Run(`<p>\(x\)</p>`)

	o := waitFor(t, c)
	if o.State != typeset.StateReady || o.Token != tok {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	if o.HTML != "<p><mjx>x</mjx></p>" {
		t.Fatalf("html = %q", o.HTML)
	}
}

func TestCoordinatorTimeoutDegradesAndAllowsExport(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := typeset.NewCoordinator(hang(block), typeset.WithTimeout(30*time.Millisecond))
	c.Run("<p>raw</p>")

	if st := c.State(); st != typeset.StatePending {
		t.Fatalf("state right after run = %s, want pending", st)
	}

	var exported typeset.Outcome
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := c.Export(ctx, func(o typeset.Outcome) error {
		exported = o
		return nil
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.State != typeset.StateDegraded {
		t.Fatalf("state = %s, want ready-degraded", exported.State)
	}
	if exported.HTML != "<p>raw</p>" {
		t.Fatalf("degraded export must carry raw source, got %q", exported.HTML)
	}
	if !errors.Is(exported.Err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", exported.Err)
	}
}

func TestCoordinatorUnavailableDegradesImmediately(t *testing.T) {
	c := typeset.NewCoordinator(nil, typeset.WithTimeout(time.Hour))
	c.Run("<p>raw</p>")
	o := waitFor(t, c)
	if o.State != typeset.StateDegraded || !errors.Is(o.Err, typeset.ErrUnavailable) {
		t.Fatalf("unexpected outcome: %+v", o)
	}
}

func TestCoordinatorEmptyResultDegrades(t *testing.T) {
	ts := typeset.Func(func(context.Context, string) (string, error) { return "", nil })
	c := typeset.NewCoordinator(ts)
	c.Run("<p>raw</p>")
	if o := waitFor(t, c); o.State != typeset.StateDegraded || o.HTML != "<p>raw</p>" {
		t.Fatalf("unexpected outcome: %+v", o)
	}
}

func TestCoordinatorExportGatedWhilePending(t *testing.T) {
	release := make(chan struct{})
	ts := typeset.Func(func(ctx context.Context, html string) (string, error) {
		<-release
		return "typeset:" + html, nil
	})
	c := typeset.NewCoordinator(ts, typeset.WithTimeout(5*time.Second))
	c.Run("doc")

	called := make(chan typeset.Outcome, 1)
	go func() {
		_ = c.Export(context.Background(), func(o typeset.Outcome) error {
			called <- o
			return nil
		})
	}()

	select {
	case <-called:
		t.Fatalf("export ran while pending")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case o := <-called:
		if o.State != typeset.StateReady || o.HTML != "typeset:doc" {
			t.Fatalf("unexpected outcome: %+v", o)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("export never ran")
	}
}

func TestCoordinatorRerunDiscardsStaleResult(t *testing.T) {
	releaseFirst := make(chan struct{})
	var calls int32
	ts := typeset.Func(func(ctx context.Context, html string) (string, error) {
		atomic.AddInt32(&calls, 1)
		if html == "first" {
			<-releaseFirst
			return "typeset:first", nil
		}
		return "typeset:" + html, nil
	})
	c := typeset.NewCoordinator(ts, typeset.WithTimeout(5*time.Second))

	t1 := c.Run("first")
	t2 := c.Run("second")
	if t2 <= t1 {
		t.Fatalf("tokens must increase: %d then %d", t1, t2)
	}
	close(releaseFirst)

	o := waitFor(t, c)
	if o.Token != t2 || o.HTML != "typeset:second" {
		t.Fatalf("unexpected outcome: %+v", o)
	}

	// give the superseded run time to finish; it must not overwrite the result
	time.Sleep(20 * time.Millisecond)
	if got := c.Outcome(); got.Token != t2 || got.HTML != "typeset:second" {
		t.Fatalf("stale result applied: %+v", got)
	}
}

func TestCoordinatorRerunAfterTerminalResetsToPending(t *testing.T) {
	release := make(chan struct{})
	ts := typeset.Func(func(ctx context.Context, html string) (string, error) {
		if html == "v2" {
			<-release
		}
		return "ok:" + html, nil
	})
	c := typeset.NewCoordinator(ts, typeset.WithTimeout(5*time.Second))
	c.Run("v1")
	if o := waitFor(t, c); o.State != typeset.StateReady {
		t.Fatalf("first run not ready: %+v", o)
	}

	c.Run("v2")
	if st := c.State(); st != typeset.StatePending {
		t.Fatalf("rerun should reset to pending, got %s", st)
	}
	close(release)
	if o := waitFor(t, c); o.HTML != "ok:v2" {
		t.Fatalf("unexpected outcome: %+v", o)
	}
}

func TestCoordinatorWaitBeforeRun(t *testing.T) {
	c := typeset.NewCoordinator(nil)
	if _, err := c.Wait(context.Background()); !errors.Is(err, typeset.ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}
	if c.Token() != 0 {
		t.Fatalf("token before first run = %d", c.Token())
	}
}

func TestCoordinatorWaitHonorsContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := typeset.NewCoordinator(hang(block), typeset.WithTimeout(time.Hour))
	defer c.Close()
	c.Run("doc")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
