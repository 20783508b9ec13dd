package store

import embeddedmigrations "github.com/terraincognita07/platewise/migrations"

func loadEmbeddedMigrationsForTest() ([]migration, error) {
	return loadMigrations(embeddedmigrations.Files)
}
