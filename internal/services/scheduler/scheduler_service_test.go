package scheduler

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met within timeout")
}

func TestRegisterAndTriggerJob(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var runs int32
	err := svc.RegisterJob("refresh", "*/30 * * * *", "test job", func() error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := svc.TriggerJobNow("refresh"); err != nil {
		t.Fatalf("TriggerJobNow failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return atomic.LoadInt32(&runs) == 1
	})

	status, err := svc.GetJobStatus("refresh")
	if err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		status, _ = svc.GetJobStatus("refresh")
		return status.LastRun != nil && !status.IsRunning
	})
	if status.LastError != "" {
		t.Errorf("Expected no error recorded, got %q", status.LastError)
	}
}

func TestJobErrorRecorded(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.RegisterJob("failing", "0 6 * * *", "always fails", func() error {
		return fmt.Errorf("sweep failed")
	}); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := svc.TriggerJobNow("failing"); err != nil {
		t.Fatalf("TriggerJobNow failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		status, err := svc.GetJobStatus("failing")
		return err == nil && status.LastError == "sweep failed"
	})
}

func TestJobPanicRecovered(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.RegisterJob("panicky", "0 * * * *", "panics", func() error {
		panic("boom")
	}); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := svc.TriggerJobNow("panicky"); err != nil {
		t.Fatalf("TriggerJobNow failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		status, err := svc.GetJobStatus("panicky")
		return err == nil && status.LastError == "panic: boom" && !status.IsRunning
	})
}

func TestRegisterJobValidation(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.RegisterJob("bad", "not a schedule", "", func() error { return nil }); err == nil {
		t.Error("Expected error for invalid cron expression")
	}

	if err := svc.RegisterJob("dup", "* * * * *", "", func() error { return nil }); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}
	if err := svc.RegisterJob("dup", "* * * * *", "", func() error { return nil }); err == nil {
		t.Error("Expected error for duplicate job name")
	}
}

func TestEnableDisable(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.RegisterJob("toggled", "0 * * * *", "", func() error { return nil }); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := svc.DisableJob("toggled"); err != nil {
		t.Fatalf("DisableJob failed: %v", err)
	}
	status, _ := svc.GetJobStatus("toggled")
	if status.Enabled {
		t.Error("Expected job disabled")
	}

	if err := svc.EnableJob("toggled"); err != nil {
		t.Fatalf("EnableJob failed: %v", err)
	}
	status, _ = svc.GetJobStatus("toggled")
	if !status.Enabled {
		t.Error("Expected job enabled")
	}

	if err := svc.DisableJob("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}
}
