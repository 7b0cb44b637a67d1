package model

import "time"

// Persona is a role-based view of the catalog (e.g. "Regulatory Affairs")
type Persona struct {
	ID          string       `json:"id" bson:"_id" yaml:"id"`
	Name        string       `json:"name" bson:"name" yaml:"name"`
	Description string       `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	IsActive    bool         `json:"isActive" bson:"isActive" yaml:"isActive"`
	SubPersonas []SubPersona `json:"subPersonas" bson:"subPersonas" yaml:"subPersonas"`
}

// SubPersona refines a persona (e.g. "Regulatory Affairs Manager")
type SubPersona struct {
	ID             string `json:"id" bson:"id" yaml:"id"`
	PersonaID      string `json:"personaId" bson:"personaId" yaml:"personaId"`
	Name           string `json:"name" bson:"name" yaml:"name"`
	ExpertiseLevel string `json:"expertiseLevel" bson:"expertiseLevel" yaml:"expertiseLevel"` // beginner, intermediate, expert
}

// SubPersona looks up a sub-persona owned by this persona
func (p *Persona) SubPersona(id string) (SubPersona, bool) {
	for _, sp := range p.SubPersonas {
		if sp.ID == id {
			return sp, true
		}
	}
	return SubPersona{}, false
}

// TherapeuticArea is a tag-like reference entity with a complexity weight
type TherapeuticArea struct {
	ID               string `json:"id" bson:"_id" yaml:"id"`
	Name             string `json:"name" bson:"name" yaml:"name"`
	ComplexityWeight int    `json:"complexityWeight" bson:"complexityWeight" yaml:"complexityWeight"`
}

// AIModelType is a tag-like reference entity with a complexity weight
type AIModelType struct {
	ID               string `json:"id" bson:"_id" yaml:"id"`
	Name             string `json:"name" bson:"name" yaml:"name"`
	ComplexityWeight int    `json:"complexityWeight" bson:"complexityWeight" yaml:"complexityWeight"`
}

// DeploymentScenario is a tag-like reference entity with a complexity weight
type DeploymentScenario struct {
	ID               string `json:"id" bson:"_id" yaml:"id"`
	Name             string `json:"name" bson:"name" yaml:"name"`
	ComplexityWeight int    `json:"complexityWeight" bson:"complexityWeight" yaml:"complexityWeight"`
}

// Section is a global catalog group of questions
type Section struct {
	ID                string `json:"id" bson:"_id" yaml:"id"`
	SectionNumber     int    `json:"sectionNumber" bson:"sectionNumber" yaml:"sectionNumber"`
	Title             string `json:"title" bson:"title" yaml:"title"`
	Description       string `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	BasePoints        int    `json:"basePoints" bson:"basePoints" yaml:"basePoints"` // display default only
	IsCriticalBlocker bool   `json:"isCriticalBlocker" bson:"isCriticalBlocker" yaml:"isCriticalBlocker"`
	Category          string `json:"category" bson:"category" yaml:"category"`
}

// SectionFilter narrows GetSections; zero value means all sections
type SectionFilter struct {
	IDs      []string
	Category string
}

// Catalog is one immutable version of the reference data.
// Questions are kept in catalog insertion order.
type Catalog struct {
	Version             string               `json:"version" yaml:"version"`
	Personas            []Persona            `json:"personas" yaml:"personas"`
	TherapeuticAreas    []TherapeuticArea    `json:"therapeuticAreas" yaml:"therapeuticAreas"`
	AIModelTypes        []AIModelType        `json:"aiModelTypes" yaml:"aiModelTypes"`
	DeploymentScenarios []DeploymentScenario `json:"deploymentScenarios" yaml:"deploymentScenarios"`
	Sections            []Section            `json:"sections" yaml:"sections"`
	Questions           []Question           `json:"questions" yaml:"questions"`
	LoadedAt            time.Time            `json:"loadedAt" yaml:"loadedAt"`
}

// Persona finds a persona by ID
func (c *Catalog) Persona(id string) (*Persona, bool) {
	for i := range c.Personas {
		if c.Personas[i].ID == id {
			return &c.Personas[i], true
		}
	}
	return nil, false
}

// TherapeuticArea finds a therapeutic area by ID
func (c *Catalog) TherapeuticArea(id string) (TherapeuticArea, bool) {
	for _, ta := range c.TherapeuticAreas {
		if ta.ID == id {
			return ta, true
		}
	}
	return TherapeuticArea{}, false
}

// AIModelType finds an AI model type by ID
func (c *Catalog) AIModelType(id string) (AIModelType, bool) {
	for _, mt := range c.AIModelTypes {
		if mt.ID == id {
			return mt, true
		}
	}
	return AIModelType{}, false
}

// DeploymentScenario finds a deployment scenario by ID
func (c *Catalog) DeploymentScenario(id string) (DeploymentScenario, bool) {
	for _, ds := range c.DeploymentScenarios {
		if ds.ID == id {
			return ds, true
		}
	}
	return DeploymentScenario{}, false
}

// Section finds a section by ID
func (c *Catalog) Section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
