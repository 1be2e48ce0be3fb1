package constant

// Model Dimensions
const (
	// ModelStrains is the number of trait values on each of the host and parasite ladders
	ModelStrains = 20

	// ModelSeedStrains is how many random host/parasite pairs are seeded on init
	ModelSeedStrains = 5

	// ModelTraitMin and ModelTraitMax span both trait ladders
	ModelTraitMin = 0.0
	ModelTraitMax = 10.0
)

// Record store backends
const (
	StoreMemory = "memory"
	StoreTOML   = "toml"
	StoreSQLite = "sqlite"
)

// PublishMessagePrefix precedes the record URL in every published message
const PublishMessagePrefix = "I just generated new host/parasite evolution music: "
