package connect

import (
	"io"
	"log/slog"
	"testing"

	"github.com/joshua-takyi/eventsadmin/internal/bus"
)

func TestMongoURI(t *testing.T) {
	got := MongoURI("mongodb+srv://admin:<password>@cluster0.example.net/?retryWrites=true", "p@ss")
	want := "mongodb+srv://admin:p@ss@cluster0.example.net/?retryWrites=true"
	if got != want {
		t.Fatalf("MongoURI = %q", got)
	}
	if got := MongoURI("mongodb://localhost:27017", "ignored"); got != "mongodb://localhost:27017" {
		t.Fatalf("URI without placeholder changed: %q", got)
	}
}

func TestPublisherWithoutURL(t *testing.T) {
	pub, err := Publisher("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := pub.(*bus.NoopPublisher); !ok {
		t.Fatalf("expected a no-op publisher, got %T", pub)
	}
}

func TestMongoDBDisconnectNil(t *testing.T) {
	if err := MongoDBDisconnect(nil); err != nil {
		t.Fatal(err)
	}
}
