package utils

import (
	"testing"
	"time"

	"github.com/regport/api-go/models"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 30, 0, 123456789, time.UTC).Format(time.RFC3339Nano)
	token := EncodeCursor(ts, "3f6c2c44-9a1b-4f5e-8f68-1f2d3c4b5a69")

	value, id, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if value != ts {
		t.Errorf("value = %q, want %q", value, ts)
	}
	if id != "3f6c2c44-9a1b-4f5e-8f68-1f2d3c4b5a69" {
		t.Errorf("id = %q", id)
	}
}

func TestDecodeCursorMalformed(t *testing.T) {
	for _, token := range []string{"not base64!!", "bm90IGpzb24="} {
		_, _, err := DecodeCursor(token)
		if models.KindOf(err) != models.KindValidation {
			t.Errorf("token %q: want ValidationError, got %v", token, err)
		}
	}
}
