package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procuration/internal/kv"
	"procuration/internal/request/models"
	"procuration/pkg/platform/sentinel"
)

// Field-per-key persistence is exercised here because the lifecycle suite
// only observes it through transitions.
type RecordStoreSuite struct {
	suite.Suite
	kv    *kv.MemoryStore
	store *Store
	ctx   context.Context
}

func TestRecordStoreSuite(t *testing.T) {
	suite.Run(t, new(RecordStoreSuite))
}

func (s *RecordStoreSuite) SetupTest() {
	s.kv = kv.NewMemory()
	s.store = New(s.kv)
	s.ctx = context.Background()
}

func (s *RecordStoreSuite) TestVerification() {
	s.Run("absent identity reads as absent", func() {
		v, err := s.store.Verification(s.ctx, "nobody@x.com")
		s.Require().NoError(err)
		s.Equal(models.VerificationAbsent, v.Status)
		s.Nil(v.VerifiedAt)
	})

	s.Run("pending then verified", func() {
		s.Require().NoError(s.store.MarkPending(s.ctx, "a@x.com"))
		v, err := s.store.Verification(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal(models.VerificationPending, v.Status)

		at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		s.Require().NoError(s.store.MarkVerified(s.ctx, "a@x.com", at))
		v, err = s.store.Verification(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal(models.VerificationVerified, v.Status)
		s.Require().NotNil(v.VerifiedAt)
		s.True(at.Equal(*v.VerifiedAt))
	})

	s.Run("resubmission resets to pending", func() {
		s.Require().NoError(s.store.MarkVerified(s.ctx, "b@x.com", time.Now()))
		s.Require().NoError(s.store.MarkPending(s.ctx, "b@x.com"))

		v, err := s.store.Verification(s.ctx, "b@x.com")
		s.Require().NoError(err)
		s.Equal(models.VerificationPending, v.Status)
	})

	s.Run("garbage flag is invalid state", func() {
		s.Require().NoError(s.kv.Set(s.ctx, models.VerifiedKey("c@x.com"), "yesterday"))
		_, err := s.store.Verification(s.ctx, "c@x.com")
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *RecordStoreSuite) TestRequesters() {
	added, err := s.store.RegisterRequester(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.True(added)

	added, err = s.store.RegisterRequester(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.False(added)

	_, err = s.store.RegisterRequester(s.ctx, "b@x.com")
	s.Require().NoError(err)

	list, err := s.store.Requesters(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"b@x.com", "a@x.com"}, list)
}

func (s *RecordStoreSuite) TestLocality() {
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	s.Run("creation date is kept from the first choice", func() {
		s.Require().NoError(s.store.SaveLocality(s.ctx, "a@x.com", "75056", "Paris (75, Paris, Île-de-France)", first))
		s.Require().NoError(s.store.SaveLocality(s.ctx, "a@x.com", "69123", "Lyon (69, Rhône, Auvergne-Rhône-Alpes)", second))

		rec, err := s.store.Load(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal("69123", rec.LocalityCode)
		s.Equal("Lyon (69, Rhône, Auvergne-Rhône-Alpes)", rec.LocalityLabel)
		s.Require().NotNil(rec.CreatedAt)
		s.True(first.Equal(*rec.CreatedAt))
	})

	s.Run("delete keeps counter and creation date", func() {
		_, err := s.store.IncrementChanges(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Require().NoError(s.store.DeleteLocality(s.ctx, "a@x.com"))

		rec, err := s.store.Load(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Empty(rec.LocalityCode)
		s.Empty(rec.LocalityLabel)
		s.Equal(int64(1), rec.ChangeCount)
		s.NotNil(rec.CreatedAt)
	})
}

func (s *RecordStoreSuite) TestIncrementChangesConcurrent() {
	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.IncrementChanges(s.ctx, "a@x.com")
			s.NoError(err)
		}()
	}
	wg.Wait()

	count, err := s.store.ChangeCount(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(int64(n), count)
}

func (s *RecordStoreSuite) TestFlagsAndMatch() {
	s.Run("flags are idempotent", func() {
		f, err := s.store.SetFlags(s.ctx, "a@x.com", models.FlagConfirmationAcknowledged)
		s.Require().NoError(err)
		s.True(f.Has(models.FlagConfirmationAcknowledged))

		f, err = s.store.SetFlags(s.ctx, "a@x.com", models.FlagConfirmationAcknowledged)
		s.Require().NoError(err)
		s.Equal(models.FlagConfirmationAcknowledged, f)
	})

	s.Run("matched offer is read from the match key", func() {
		offer, err := s.store.MatchedOffer(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Empty(offer)

		s.Require().NoError(s.kv.Set(s.ctx, models.MatchKey("a@x.com"), "proxy@y.com"))
		rec, err := s.store.Load(s.ctx, "a@x.com")
		s.Require().NoError(err)
		s.Equal("proxy@y.com", rec.MatchedOffer)
		s.Equal(models.StateConfirmed, rec.State())
	})
}

func (s *RecordStoreSuite) TestLoadEmpty() {
	rec, err := s.store.Load(s.ctx, "ghost@x.com")
	s.Require().NoError(err)
	s.Equal(models.StateNew, rec.State())
	s.Nil(rec.CreatedAt)
	s.Zero(rec.ChangeCount)
}
