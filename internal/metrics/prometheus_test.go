package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordApplicationReviewed(t *testing.T) {
	ApplicationsReviewedTotal.Reset()

	RecordApplicationReviewed("accept")
	RecordApplicationReviewed("accept")
	RecordApplicationReviewed("reject")

	count := testutil.ToFloat64(ApplicationsReviewedTotal.WithLabelValues("accept"))
	if count != 2 {
		t.Errorf("Expected accept count = 2, got %f", count)
	}

	count = testutil.ToFloat64(ApplicationsReviewedTotal.WithLabelValues("reject"))
	if count != 1 {
		t.Errorf("Expected reject count = 1, got %f", count)
	}
}

func TestRecordPromotionDecided(t *testing.T) {
	PromotionsDecidedTotal.Reset()

	RecordPromotionDecided("approve")
	RecordPromotionDecided("reject")
	RecordPromotionDecided("reject")

	count := testutil.ToFloat64(PromotionsDecidedTotal.WithLabelValues("reject"))
	if count != 2 {
		t.Errorf("Expected reject count = 2, got %f", count)
	}
}

func TestRecordReservationConflict(t *testing.T) {
	before := testutil.ToFloat64(ReservationConflictsTotal)

	RecordReservationConflict()
	RecordReservationConflict()

	after := testutil.ToFloat64(ReservationConflictsTotal)
	if after-before != 2 {
		t.Errorf("Expected conflict counter to grow by 2, got %f", after-before)
	}
}

func TestSetActiveReservations(t *testing.T) {
	SetActiveReservations(7)

	if v := testutil.ToFloat64(ActiveReservations); v != 7 {
		t.Errorf("Expected active reservations gauge = 7, got %f", v)
	}
}
