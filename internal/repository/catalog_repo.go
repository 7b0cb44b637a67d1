package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"govready/internal/model"
)

// CatalogRepo is read-only access to the reference catalog. ReplaceCatalog is
// used by seeding only.
type CatalogRepo interface {
	GetPersona(ctx context.Context, id string) (*model.Persona, error)
	ListPersonas(ctx context.Context) ([]model.Persona, error)
	GetSections(ctx context.Context, filter model.SectionFilter) ([]model.Section, error)
	GetQuestions(ctx context.Context, sectionIDs []string) ([]model.Question, error)
	GetConditions(ctx context.Context, questionIDs []string) ([]model.ApplicabilityCondition, error)
	ListTherapeuticAreas(ctx context.Context) ([]model.TherapeuticArea, error)
	ListAIModelTypes(ctx context.Context) ([]model.AIModelType, error)
	ListDeploymentScenarios(ctx context.Context) ([]model.DeploymentScenario, error)
	Version(ctx context.Context) (string, error)
	ReplaceCatalog(ctx context.Context, c *model.Catalog) error
}

const catalogMetaID = "current"

type catalogMeta struct {
	ID        string    `bson:"_id"`
	Version   string    `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type catalogRepo struct {
	personas            *mongo.Collection
	therapeuticAreas    *mongo.Collection
	aiModelTypes        *mongo.Collection
	deploymentScenarios *mongo.Collection
	sections            *mongo.Collection
	questions           *mongo.Collection
	conditions          *mongo.Collection
	meta                *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		personas:            db.Collection("personas"),
		therapeuticAreas:    db.Collection("therapeutic_areas"),
		aiModelTypes:        db.Collection("ai_model_types"),
		deploymentScenarios: db.Collection("deployment_scenarios"),
		sections:            db.Collection("sections"),
		questions:           db.Collection("questions"),
		conditions:          db.Collection("applicability_conditions"),
		meta:                db.Collection("catalog_meta"),
	}
}

func (r *catalogRepo) GetPersona(ctx context.Context, id string) (*model.Persona, error) {
	var persona model.Persona
	err := r.personas.FindOne(ctx, bson.M{"_id": id}).Decode(&persona)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &persona, nil
}

func (r *catalogRepo) ListPersonas(ctx context.Context) ([]model.Persona, error) {
	var personas []model.Persona
	if err := findAll(ctx, r.personas, bson.M{}, &personas, sortBy("_id")); err != nil {
		return nil, err
	}
	return personas, nil
}

func (r *catalogRepo) GetSections(ctx context.Context, filter model.SectionFilter) ([]model.Section, error) {
	query := bson.M{}
	if filter.IDs != nil {
		query["_id"] = bson.M{"$in": filter.IDs}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	var sections []model.Section
	if err := findAll(ctx, r.sections, query, &sections, sortBy("sectionNumber", "_id")); err != nil {
		return nil, err
	}
	return sections, nil
}

// GetQuestions returns questions in catalog order; nil sectionIDs means all
func (r *catalogRepo) GetQuestions(ctx context.Context, sectionIDs []string) ([]model.Question, error) {
	query := bson.M{}
	if sectionIDs != nil {
		query["sectionId"] = bson.M{"$in": sectionIDs}
	}

	var questions []model.Question
	if err := findAll(ctx, r.questions, query, &questions, sortBy("position", "_id")); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetConditions returns the conditions of the given questions; nil means all
func (r *catalogRepo) GetConditions(ctx context.Context, questionIDs []string) ([]model.ApplicabilityCondition, error) {
	query := bson.M{}
	if questionIDs != nil {
		query["questionId"] = bson.M{"$in": questionIDs}
	}

	var conditions []model.ApplicabilityCondition
	if err := findAll(ctx, r.conditions, query, &conditions, sortBy("questionId", "_id")); err != nil {
		return nil, err
	}
	return conditions, nil
}

func (r *catalogRepo) ListTherapeuticAreas(ctx context.Context) ([]model.TherapeuticArea, error) {
	var out []model.TherapeuticArea
	if err := findAll(ctx, r.therapeuticAreas, bson.M{}, &out, sortBy("_id")); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListAIModelTypes(ctx context.Context) ([]model.AIModelType, error) {
	var out []model.AIModelType
	if err := findAll(ctx, r.aiModelTypes, bson.M{}, &out, sortBy("_id")); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListDeploymentScenarios(ctx context.Context) ([]model.DeploymentScenario, error) {
	var out []model.DeploymentScenario
	if err := findAll(ctx, r.deploymentScenarios, bson.M{}, &out, sortBy("_id")); err != nil {
		return nil, err
	}
	return out, nil
}

// Version returns the seeded catalog version, or "" when nothing was seeded
func (r *catalogRepo) Version(ctx context.Context) (string, error) {
	var meta catalogMeta
	err := r.meta.FindOne(ctx, bson.M{"_id": catalogMetaID}).Decode(&meta)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return meta.Version, nil
}

// ReplaceCatalog drops and rewrites every catalog collection, then bumps the
// version. Readers keyed on the version pick up the new catalog afterwards.
func (r *catalogRepo) ReplaceCatalog(ctx context.Context, c *model.Catalog) error {
	type batch struct {
		coll *mongo.Collection
		docs []interface{}
	}

	var conditions []interface{}
	for _, q := range c.Questions {
		for i, cond := range q.Conditions {
			cond.QuestionID = q.ID
			if cond.ID == "" {
				cond.ID = fmt.Sprintf("%s-%d", q.ID, i)
			}
			conditions = append(conditions, cond)
		}
	}

	batches := []batch{
		{r.personas, toDocs(c.Personas)},
		{r.therapeuticAreas, toDocs(c.TherapeuticAreas)},
		{r.aiModelTypes, toDocs(c.AIModelTypes)},
		{r.deploymentScenarios, toDocs(c.DeploymentScenarios)},
		{r.sections, toDocs(c.Sections)},
		{r.questions, toDocs(c.Questions)},
		{r.conditions, conditions},
	}

	for _, b := range batches {
		if _, err := b.coll.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear %s: %w", b.coll.Name(), err)
		}
		if len(b.docs) == 0 {
			continue
		}
		if _, err := b.coll.InsertMany(ctx, b.docs); err != nil {
			return fmt.Errorf("insert %s: %w", b.coll.Name(), err)
		}
	}

	meta := catalogMeta{ID: catalogMetaID, Version: c.Version, UpdatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	_, err := r.meta.ReplaceOne(ctx, bson.M{"_id": catalogMetaID}, meta, opts)
	return err
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}, opts *options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func sortBy(fields ...string) *options.FindOptions {
	sort := bson.D{}
	for _, f := range fields {
		sort = append(sort, bson.E{Key: f, Value: 1})
	}
	return options.Find().SetSort(sort)
}

func toDocs[T any](items []T) []interface{} {
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	return docs
}
