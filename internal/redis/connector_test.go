package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/doodl/internal/logger"
)

func validOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "localhost:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        40 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectOptions)
		wantErr string
	}{
		{name: "valid", mutate: func(*ConnectOptions) {}},
		{name: "empty address", mutate: func(o *ConnectOptions) { o.Addr = "" }, wantErr: "address is empty"},
		{name: "zero ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }, wantErr: "PingTimeout must be > 0"},
		{name: "negative threshold", mutate: func(o *ConnectOptions) { o.WarnThreshold = -1 }, wantErr: "WarnThreshold must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)
			err := o.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	b := &backoff{next: time.Second, max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := b.wait(); got != w {
			t.Errorf("wait #%d = %v, want %v", i, got, w)
		}
	}
}

// flakyPinger fails the first n pings.
type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(ctx context.Context) *redis.StatusCmd {
	p.calls++
	cmd := redis.NewStatusCmd(ctx)
	if p.calls <= p.failures {
		cmd.SetErr(errors.New("connection refused"))
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func TestWaitReady(t *testing.T) {
	log := logger.New("error", false)

	t.Run("retries until the server answers", func(t *testing.T) {
		p := &flakyPinger{failures: 2}
		if err := waitReady(context.Background(), p, validOptions(), log); err != nil {
			t.Fatalf("waitReady failed: %v", err)
		}
		if p.calls != 3 {
			t.Errorf("calls = %d, want 3", p.calls)
		}
	})

	t.Run("gives up after the connect timeout", func(t *testing.T) {
		o := validOptions()
		o.ConnectTimeout = 60 * time.Millisecond
		err := waitReady(context.Background(), &flakyPinger{failures: 1000}, o, log)
		if err == nil || !strings.Contains(err.Error(), "redis unavailable") {
			t.Fatalf("error = %v, want redis unavailable", err)
		}
	})
}
