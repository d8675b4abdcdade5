package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
)

func TestValidSubscription(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"endpoint":"https://push.example/abc","keys":{"p256dh":"key","auth":"secret"}}`, true},
		{`{"endpoint":"https://push.example/abc","keys":{"p256dh":"key"}}`, false},
		{`{"keys":{"p256dh":"key","auth":"secret"}}`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		if got := ValidSubscription([]byte(tt.raw)); got != tt.want {
			t.Errorf("ValidSubscription(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSendMapsGoneStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys: %v", err)
	}
	// subscriber keys: any valid P-256 public key works for encryption
	_, subPub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys: %v", err)
	}

	sender := NewWebPush(pub, priv, "mailto:test@example.com")
	sub := []byte(`{"endpoint":"` + srv.URL + `/push","keys":{"p256dh":"` + subPub + `","auth":"c2VjcmV0c2VjcmV0MTIzNA"}}`)

	err = sender.Send(context.Background(), sub, Payload{Title: "Medication Reminder"})
	if !errors.Is(err, ErrGone) {
		t.Fatalf("expected ErrGone, got %v", err)
	}
}

func TestSendRejectsBadSubscription(t *testing.T) {
	sender := NewWebPush("pub", "priv", "mailto:test@example.com")
	if err := sender.Send(context.Background(), []byte(`{}`), Payload{}); err == nil {
		t.Fatalf("expected error for subscription without endpoint")
	}
}
