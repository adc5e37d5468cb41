//go:build unix

package daemon

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

const daemonLiveTestEnv = "CONTACTS_DAEMON_LIVE_TEST"

func TestLiveGetContacts(t *testing.T) {
	if os.Getenv(daemonLiveTestEnv) != "1" {
		t.Skipf("set %s=1 to run live contacts daemon tests", daemonLiveTestEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Dial(ctx, DefaultTarget())
	be.Err(t, err, nil)
	defer client.Close()

	records, err := client.GetContacts(ctx)
	be.Err(t, err, nil)
	for _, record := range records {
		be.True(t, record.Card != "")
	}
}

func TestLiveUnknownService(t *testing.T) {
	if os.Getenv(daemonLiveTestEnv) != "1" {
		t.Skipf("set %s=1 to run live contacts daemon tests", daemonLiveTestEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := Dial(ctx, Target{Service: "org.example.NoSuchContactsDaemon"})
	be.True(t, IsUnavailable(err))
}
