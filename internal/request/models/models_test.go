package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusFlags(t *testing.T) {
	var f StatusFlags
	assert.False(t, f.Has(FlagConfirmationAcknowledged))

	f |= FlagConfirmationAcknowledged
	f |= FlagConfirmationAcknowledged
	assert.True(t, f.Has(FlagConfirmationAcknowledged))
	assert.Equal(t, StatusFlags(1), f)
}

func TestChangeAllowed(t *testing.T) {
	assert.True(t, ChangeAllowed(1, MaxLocalityChanges))
	assert.True(t, ChangeAllowed(3, MaxLocalityChanges))
	assert.False(t, ChangeAllowed(4, MaxLocalityChanges))
}

func TestRecordState(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		record Record
		want   State
	}{
		{"never submitted", Record{}, StateNew},
		{"pending verification", Record{Verification: Verification{Status: VerificationPending}}, StateSubmitted},
		{"verified", Record{Verification: Verification{Status: VerificationVerified, VerifiedAt: &now}}, StateVerified},
		{"locality chosen", Record{LocalityCode: "75056"}, StateLocalityChosen},
		{"matched", Record{LocalityCode: "75056", MatchedOffer: "p@y.com"}, StateMatched},
		{"confirmed", Record{MatchedOffer: "p@y.com", Flags: FlagConfirmationAcknowledged}, StateConfirmed},
		{"acknowledged without match stays on locality", Record{LocalityCode: "75056", Flags: FlagConfirmationAcknowledged}, StateLocalityChosen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.State())
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "requests:a@x.com:valid", VerifiedKey("a@x.com"))
	assert.Equal(t, "requests:a@x.com:insee", LocalityKey("a@x.com"))
	assert.Equal(t, "requests:a@x.com:posted", FlagsKey("a@x.com"))
	assert.Equal(t, "requests:a_b@x.com:match", MatchKey("a:b@x.com"))
}

func TestLocalityLabel(t *testing.T) {
	assert.Equal(t, "Paris (75, Paris, Île-de-France)", LocalityLabel("Paris", "75, Paris, Île-de-France"))
	assert.Equal(t, "Paris", LocalityLabel("Paris", ""))
}
