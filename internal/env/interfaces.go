package env

// Environment is the simulator collaborator driven by the harness.
// An instance owns its simulation state and is not safe for concurrent
// episode sequences.
type Environment interface {
	// Reset starts a new episode and returns a First TimeStep.
	Reset() (TimeStep, error)
	// Step advances the simulation by one control step and returns a Mid or
	// Last TimeStep.
	Step(action []float64) (TimeStep, error)
	// ActionSpec describes the accepted action vector.
	ActionSpec() BoundedArraySpec
	// ObservationSpec describes every observation the environment emits.
	ObservationSpec() ObservationSpec
}

// Category names a kind of model entity.
type Category string

const (
	Body     Category = "body"
	Joint    Category = "joint"
	Geom     Category = "geom"
	Site     Category = "site"
	Camera   Category = "camera"
	Light    Category = "light"
	Mesh     Category = "mesh"
	HField   Category = "hfield"
	Texture  Category = "texture"
	Material Category = "material"
	Equality Category = "equality"
	Tendon   Category = "tendon"
	Actuator Category = "actuator"
	Sensor   Category = "sensor"
	Numeric  Category = "numeric"
	Text     Category = "text"
	Tuple    Category = "tuple"
)

// Categories lists every entity category in a fixed order.
var Categories = []Category{
	Body, Joint, Geom, Site, Camera, Light, Mesh, HField, Texture,
	Material, Equality, Tendon, Actuator, Sensor, Numeric, Text, Tuple,
}

// Model is read-only introspection into a compiled model.
type Model interface {
	Name() string
	// Count returns the number of entities of the category.
	Count(c Category) int
	// ID2Name returns the name of entity idx, or "" when it is unnamed.
	ID2Name(c Category, idx int) string
}

// ModelProvider is implemented by environments that expose their model.
type ModelProvider interface {
	Model() Model
}

// RewardVisualizer is implemented by environments that can tint the scene
// by reward.
type RewardVisualizer interface {
	SetVisualizeReward(on bool)
}
