package background

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/schema"
)

const backgroundLogPrefix = "background"

// SyncPOILastVisit stamps a point with the checkout time of a finalized
// visit. Enqueued by the API right after a finalize succeeds so list views
// never pay for the extra write.
func (m *BackgroundManager) SyncPOILastVisit(visitID string) error {
	id, err := primitive.ObjectIDFromHex(visitID)
	if err != nil {
		return fmt.Errorf("invalid visit id %q", visitID)
	}

	visit, err := m.mongo.GetVisit(id)
	if err != nil {
		return err
	}

	if visit.Status != schema.StatusFinalized || visit.CheckoutTime == nil {
		log.WithFields(log.Fields{
			"prefix":   backgroundLogPrefix,
			"visit_id": visitID,
			"status":   visit.Status,
		}).Warn("skip last-visit sync for non-finalized visit")
		return nil
	}

	return m.mongo.SetPOILastVisit(visit.PointID, *visit.CheckoutTime)
}

// SweepOverdueDeferrals returns overdue deferred visits to the active queue.
// Scheduled periodically from the worker entry point.
func (m *BackgroundManager) SweepOverdueDeferrals() error {
	cleared, err := m.mongo.ClearOverdueDeferrals(time.Now())
	if err != nil {
		return err
	}

	if cleared > 0 {
		log.WithFields(log.Fields{
			"prefix":  backgroundLogPrefix,
			"cleared": cleared,
		}).Info("overdue deferrals returned to queue")
	}

	return nil
}
