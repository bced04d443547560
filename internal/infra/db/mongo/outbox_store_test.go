package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestClaimFilterTakesOverExpiredClaims(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	filter := claimFilter(now, 5*time.Minute)

	branches, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, branches, 2)

	due := branches[0].(bson.M)
	assert.Equal(t, bson.M{"$in": bson.A{stateNew, stateFailed}}, due["state"])
	assert.Equal(t, bson.M{"$lte": now}, due["next_attempt_at"])

	expired := branches[1].(bson.M)
	assert.Equal(t, stateClaimed, expired["state"])
	assert.Equal(t, bson.M{"$lt": now.Add(-5 * time.Minute)}, expired["claimed_at"])
}

func TestIdempotencyDocumentKeepsFingerprint(t *testing.T) {
	raw, err := bson.Marshal(idempotencyDocument{ID: "k", Command: "booking.create", Fingerprint: "abc", Payload: []byte(`{}`)})
	require.NoError(t, err)
	var doc idempotencyDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	rec := doc.toRecord()
	assert.Equal(t, "abc", rec.Fingerprint)
	assert.Equal(t, "booking.create", rec.Command)
}
