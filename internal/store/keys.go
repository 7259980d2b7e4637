package store

const (
	// KeyLinks holds the ordered link collection.
	KeyLinks = "launchPadR1Links_v2"
	// KeyFavorites holds the favorite link ids.
	KeyFavorites = "launchPadR1FavoriteLinkIds_v2"
	// KeyView holds the list/group view mode.
	KeyView = "launchPadR1View_v2"
	// KeyCollapsed holds the folded category names.
	KeyCollapsed = "launchPadR1Collapsed_v2"
	// KeyTheme holds the active theme record.
	KeyTheme = "launchPadR1Theme_v2"
	// KeyVolume holds the device volume, 0-100.
	KeyVolume = "launchPadR1Volume_v2"

	// KeyMigrated is set once legacy keys have been reconciled.
	KeyMigrated = "launchPadR1_migrated_v1"
	// KeyLegacyBackup maps legacy key names to values that could not be migrated.
	KeyLegacyBackup = "launchPadR1_legacy_backup_v1"
	// KeyMigrationLock guards a running reconciliation.
	KeyMigrationLock = "launchPadR1_migration_lock"
)

// CurrentKeys lists every key of the current schema.
var CurrentKeys = []string{
	KeyLinks, KeyFavorites, KeyView, KeyCollapsed, KeyTheme, KeyVolume,
}
