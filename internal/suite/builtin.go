package suite

// BuiltinFactories maps the domains of the embedded manifest to their
// environment constructors.
func BuiltinFactories() map[string]Factory {
	return map[string]Factory{
		"cartpole":   NewCartpole,
		"pendulum":   NewPendulum,
		"point_mass": NewPointMass,
	}
}

// Default builds the registry of the embedded manifest.
func Default() (*Registry, error) {
	m, err := BuiltinManifest()
	if err != nil {
		return nil, err
	}
	return NewRegistry(m, BuiltinFactories())
}
