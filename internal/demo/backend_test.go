package demo

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/pickbetter/labelscan/internal/client"
	"github.com/pickbetter/labelscan/internal/normalize"
)

func TestScanDeterministicPerSeed(t *testing.T) {
	a := NewBackend(42)
	b := NewBackend(42)

	pa, status, err := a.Scan(context.Background(), "3017624422003")
	if err != nil || status != http.StatusOK {
		t.Fatalf("scan: status %d err %v", status, err)
	}
	pb, _, _ := b.Scan(context.Background(), "3017624422003")
	if !reflect.DeepEqual(pa, pb) {
		t.Fatal("same seed and barcode should produce identical payloads")
	}

	other := NewBackend(7)
	pc, _, _ := other.Scan(context.Background(), "3017624422003")
	if reflect.DeepEqual(pa, pc) {
		t.Fatal("different seeds should produce different payloads")
	}
}

func TestScanUnknownBarcode(t *testing.T) {
	b := NewBackend(42)
	_, status, err := b.Scan(context.Background(), "123450")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for barcodes ending in 0", status)
	}
}

func TestScanPayloadNormalizes(t *testing.T) {
	b := NewBackend(42)
	payload, status, err := b.Scan(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	out := normalize.Scan(payload, status, "123456789", nil)
	if out.Kind != normalize.ResultsReady {
		t.Fatalf("kind = %s", out.Kind)
	}
	an := out.Analysis
	if an.ProductName == "" || an.ProductName == "Unknown Product" {
		t.Fatalf("product name = %q", an.ProductName)
	}
	switch an.Grade {
	case "A", "B", "C", "D", "F":
	default:
		t.Fatalf("grade = %q", an.Grade)
	}
	if an.Macros.Calories == "N/A" {
		t.Fatal("generated payload should carry calories")
	}
	if len(an.Alternatives) == 0 {
		t.Fatal("generated payload should carry a recommendation")
	}
}

func TestContributeUsesSubmittedName(t *testing.T) {
	b := NewBackend(42)
	res, err := b.Contribute(context.Background(), client.ContributionInput{
		Barcode:     "123456789",
		ProductName: "Homemade Granola",
		Brand:       "Kitchen Co",
	})
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	an := normalize.Analysis(res.Payload, nil)
	if an.ProductName != "Homemade Granola" || an.Brand != "Kitchen Co" {
		t.Fatalf("analysis = %+v", an)
	}
}

func TestChatEchoesQuestion(t *testing.T) {
	b := NewBackend(42)
	reply, err := b.Chat(context.Background(), []client.ChatMessage{{Role: "user", Content: "is sugar bad"}}, nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply")
	}
}
