package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateDetector(t *testing.T) {
	gd := NewGateDetector()

	tests := []struct {
		name     string
		text     string
		title    string
		wantGate bool
		wantKind string
	}{
		{"age gate", "Are you 21 or older? Yes No", "Green Leaf Menu", true, GateAge},
		{"age verification title", "Please confirm to continue", "Age Verification", true, GateAge},
		{"medical card prompt", "Do you have a medical card?", "", true, GateAge},
		{"captcha", "Please complete the CAPTCHA to continue", "", true, GateCaptcha},
		{"press and hold", "Press & Hold to confirm you are a human", "Access to this page has been denied", true, GateCaptcha},
		{"http error", "403 Forbidden", "", true, GateHTTP},
		{"bot wall", "Checking your browser before accessing. DDoS protection by provider.", "Just a moment", true, GateBotWall},
		{"menu page", "Blue Dream 3.5g $28 Gelato 1/8 oz $45", "Green Leaf | Menu", false, ""},
		{"single weak signal", strings.Repeat("menu loading ", 100) + "security check", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gated, kind, reason := gd.Detect(tt.text, tt.title)
			assert.Equal(t, tt.wantGate, gated)
			assert.Equal(t, tt.wantKind, kind)
			if tt.wantGate {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}
