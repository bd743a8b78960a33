package engine

import (
	"testing"
	"time"
)

func TestDomainMemoryRememberRecall(t *testing.T) {
	dm := NewDomainMemory(time.Minute)
	defer dm.Stop()

	if got := dm.Recall("example.com"); got != "" {
		t.Errorf("Recall before Remember = %q, want empty", got)
	}
	dm.Remember("example.com", "browser")
	if got := dm.Recall("example.com"); got != "browser" {
		t.Errorf("Recall = %q, want browser", got)
	}
	if got := dm.Recall("other.org"); got != "" {
		t.Errorf("Recall unknown domain = %q, want empty", got)
	}
}

func TestDomainMemoryExpiry(t *testing.T) {
	dm := NewDomainMemory(time.Millisecond)
	defer dm.Stop()

	dm.Remember("example.com", "browser")
	time.Sleep(5 * time.Millisecond)
	if got := dm.Recall("example.com"); got != "" {
		t.Errorf("Recall after expiry = %q, want empty", got)
	}
}

func TestDomainMemoryForget(t *testing.T) {
	dm := NewDomainMemory(time.Minute)
	defer dm.Stop()

	dm.Remember("example.com", "browser")
	dm.Forget("example.com")
	if got := dm.Recall("example.com"); got != "" {
		t.Errorf("Recall after Forget = %q, want empty", got)
	}
}

func TestDomainMemoryNilReceiver(t *testing.T) {
	var dm *DomainMemory
	dm.Remember("example.com", "browser")
	dm.Forget("example.com")
	dm.Stop()
	if got := dm.Recall("example.com"); got != "" {
		t.Errorf("nil Recall = %q, want empty", got)
	}
}
