package store

import (
	"context"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on a mongo database. Collection names are fixed;
// every filter carries the organization id.
type Mongo struct {
	DB *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{DB: db}
}

func (m *Mongo) col(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

func (m *Mongo) NextSequence(ctx context.Context, org, prefix string, t time.Time) (int64, error) {
	key := org + ":" + prefix + ":" + t.Format("200601")
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.col("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (m *Mongo) CreateActionPlan(ctx context.Context, p *models.ActionPlan) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := m.col("actionplans").InsertOne(ctx, p)
	return err
}

func (m *Mongo) ActionPlan(ctx context.Context, org string, id primitive.ObjectID) (*models.ActionPlan, error) {
	var p models.ActionPlan
	err := m.col("actionplans").FindOne(ctx, bson.M{"_id": id, "organizationid": org}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *Mongo) ActionPlans(ctx context.Context, q ActionPlanQuery) ([]models.ActionPlan, error) {
	filter := bson.M{"organizationid": q.OrganizationID}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if q.AssigneeID != "" {
		filter["assigneeid"] = q.AssigneeID
	}
	if q.SourceType != "" {
		filter["sourcetype"] = q.SourceType
	}
	due := bson.M{}
	if !q.DueAfter.IsZero() {
		due["$gte"] = q.DueAfter
	}
	if !q.DueBefore.IsZero() {
		due["$lte"] = q.DueBefore
	}
	if len(due) > 0 {
		filter["duedate"] = due
	}

	cursor, err := m.col("actionplans").Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "duedate", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var plans []models.ActionPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (m *Mongo) ApplyStatusChange(ctx context.Context, org string, id primitive.ObjectID, expectVersion int64, change StatusChange) error {
	set := bson.M{
		"status":    change.Status,
		"progress":  change.Progress,
		"updatedby": change.UpdatedBy,
		"updatedat": change.UpdatedAt,
	}
	if change.CompletedAt != nil {
		set["completedat"] = change.CompletedAt
	}
	if change.VerifiedAt != nil {
		set["verifiedat"] = change.VerifiedAt
	}

	filter := bson.M{"_id": id, "organizationid": org, "version": expectVersion}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	res, err := m.col("actionplans").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a stale version from a missing document.
		count, err := m.col("actionplans").CountDocuments(ctx, bson.M{"_id": id, "organizationid": org})
		if err != nil {
			return err
		}
		if count == 0 {
			return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
		}
		return &models.ConcurrencyConflict{Entity: "action plan", ID: id.Hex()}
	}
	return nil
}

func (m *Mongo) SetProgress(ctx context.Context, org string, id primitive.ObjectID, progress int, by string, at time.Time) error {
	res, err := m.col("actionplans").UpdateOne(ctx,
		bson.M{"_id": id, "organizationid": org},
		bson.M{"$set": bson.M{"progress": progress, "updatedby": by, "updatedat": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	return nil
}

func (m *Mongo) AddChecklistItem(ctx context.Context, org string, id primitive.ObjectID, item models.ChecklistItem) error {
	res, err := m.col("actionplans").UpdateOne(ctx,
		bson.M{"_id": id, "organizationid": org},
		bson.M{"$push": bson.M{"checklistitems": item}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	return nil
}

func (m *Mongo) SetChecklistItem(ctx context.Context, org string, id, itemID primitive.ObjectID, completed bool, by string, at time.Time) error {
	set := bson.M{
		"checklistitems.$.completed": completed,
		"updatedby":                  by,
		"updatedat":                  at,
	}
	if completed {
		set["checklistitems.$.completedby"] = by
		set["checklistitems.$.completedat"] = at
	} else {
		set["checklistitems.$.completedby"] = ""
		set["checklistitems.$.completedat"] = nil
	}
	res, err := m.col("actionplans").UpdateOne(ctx,
		bson.M{"_id": id, "organizationid": org, "checklistitems._id": itemID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "checklist item", ID: itemID.Hex()}
	}
	return nil
}

func (m *Mongo) AppendComment(ctx context.Context, org string, id primitive.ObjectID, comment models.Comment) error {
	res, err := m.col("actionplans").UpdateOne(ctx,
		bson.M{"_id": id, "organizationid": org},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	return nil
}

func (m *Mongo) DeleteActionPlan(ctx context.Context, org string, id primitive.ObjectID) error {
	_, err := m.col("actionplans").DeleteOne(ctx, bson.M{"_id": id, "organizationid": org})
	return err
}

func (m *Mongo) CreateIncident(ctx context.Context, in *models.Incident) error {
	if in.ID.IsZero() {
		in.ID = primitive.NewObjectID()
	}
	_, err := m.col("incidents").InsertOne(ctx, in)
	return err
}

func (m *Mongo) Incident(ctx context.Context, org string, id primitive.ObjectID) (*models.Incident, error) {
	var in models.Incident
	err := m.col("incidents").FindOne(ctx, bson.M{"_id": id, "organizationid": org}).Decode(&in)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "incident", ID: id.Hex()}
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (m *Mongo) Incidents(ctx context.Context, q IncidentQuery) ([]models.Incident, error) {
	filter := bson.M{"organizationid": q.OrganizationID}
	if q.OpenOnly {
		filter["status"] = bson.M{"$nin": []string{"closed", "resolved"}}
	}
	if !q.Since.IsZero() {
		filter["occurredat"] = bson.M{"$gte": q.Since}
	}
	if len(q.Severities) > 0 {
		filter["severity"] = bson.M{"$in": q.Severities}
	}

	cursor, err := m.col("incidents").Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "occurredat", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var incidents []models.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (m *Mongo) LinkCapaToIncident(ctx context.Context, org string, incidentID primitive.ObjectID, capaID string) error {
	res, err := m.col("incidents").UpdateOne(ctx,
		bson.M{"_id": incidentID, "organizationid": org},
		bson.M{"$addToSet": bson.M{"linkedcapaids": capaID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "incident", ID: incidentID.Hex()}
	}
	return nil
}

func (m *Mongo) CreateAudit(ctx context.Context, a *models.Audit) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := m.col("audits").InsertOne(ctx, a)
	return err
}

func (m *Mongo) Audits(ctx context.Context, org string) ([]models.Audit, error) {
	cursor, err := m.col("audits").Find(ctx, bson.M{"organizationid": org})
	if err != nil {
		return nil, err
	}
	var audits []models.Audit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, err
	}
	return audits, nil
}

func (m *Mongo) CreateTrainingPlan(ctx context.Context, t *models.TrainingPlan) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := m.col("trainingplans").InsertOne(ctx, t)
	return err
}

func (m *Mongo) TrainingPlans(ctx context.Context, org string) ([]models.TrainingPlan, error) {
	cursor, err := m.col("trainingplans").Find(ctx, bson.M{"organizationid": org})
	if err != nil {
		return nil, err
	}
	var plans []models.TrainingPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (m *Mongo) DeleteTrainingPlan(ctx context.Context, org string, id primitive.ObjectID) error {
	_, err := m.col("trainingplans").DeleteOne(ctx, bson.M{"_id": id, "organizationid": org})
	return err
}

func (m *Mongo) CreateEquipmentRecommendation(ctx context.Context, e *models.EquipmentRecommendation) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := m.col("equipmentrecommendations").InsertOne(ctx, e)
	return err
}

func (m *Mongo) EquipmentRecommendations(ctx context.Context, org string) ([]models.EquipmentRecommendation, error) {
	cursor, err := m.col("equipmentrecommendations").Find(ctx, bson.M{"organizationid": org})
	if err != nil {
		return nil, err
	}
	var recs []models.EquipmentRecommendation
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (m *Mongo) DeleteEquipmentRecommendation(ctx context.Context, org string, id primitive.ObjectID) error {
	_, err := m.col("equipmentrecommendations").DeleteOne(ctx, bson.M{"_id": id, "organizationid": org})
	return err
}

func (m *Mongo) CreateRecommendation(ctx context.Context, r *models.Recommendation) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := m.col("recommendations").InsertOne(ctx, r)
	return err
}

func (m *Mongo) Recommendation(ctx context.Context, org string, id primitive.ObjectID) (*models.Recommendation, error) {
	var r models.Recommendation
	err := m.col("recommendations").FindOne(ctx, bson.M{"_id": id, "organizationid": org}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Entity: "recommendation", ID: id.Hex()}
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *Mongo) Recommendations(ctx context.Context, q RecommendationQuery) ([]models.Recommendation, error) {
	filter := bson.M{"organizationid": q.OrganizationID}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if len(q.Types) > 0 {
		filter["type"] = bson.M{"$in": q.Types}
	}

	cursor, err := m.col("recommendations").Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var recs []models.Recommendation
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (m *Mongo) DecideRecommendation(ctx context.Context, org string, id primitive.ObjectID, status models.RecommendationStatus, by string, at time.Time, spawnedID string) error {
	filter := bson.M{"_id": id, "organizationid": org, "status": models.RecommendationPending}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"decidedby": by,
		"decidedat": at,
		"spawnedid": spawnedID,
	}}

	res, err := m.col("recommendations").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := m.col("recommendations").CountDocuments(ctx, bson.M{"_id": id, "organizationid": org})
		if err != nil {
			return err
		}
		if count == 0 {
			return &models.NotFoundError{Entity: "recommendation", ID: id.Hex()}
		}
		return &models.ConflictError{Reason: "recommendation " + id.Hex() + " already decided"}
	}
	return nil
}

func (m *Mongo) DeleteRecommendation(ctx context.Context, org string, id primitive.ObjectID) error {
	_, err := m.col("recommendations").DeleteOne(ctx, bson.M{"_id": id, "organizationid": org})
	return err
}

func (m *Mongo) AppendHistory(ctx context.Context, h *models.HistoryEntry) error {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	_, err := m.col("history").InsertOne(ctx, h)
	return err
}

func (m *Mongo) History(ctx context.Context, org string, limit int64) ([]models.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := m.col("history").Find(ctx, bson.M{"organizationid": org}, opts)
	if err != nil {
		return nil, err
	}
	var entries []models.HistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *Mongo) Purge(ctx context.Context, org string) error {
	for _, name := range []string{
		"actionplans", "incidents", "audits", "trainingplans",
		"equipmentrecommendations", "recommendations", "history",
	} {
		if _, err := m.col(name).DeleteMany(ctx, bson.M{"organizationid": org}); err != nil {
			return err
		}
	}
	return nil
}
