// Package services implements the driving port interfaces.
//
// SearchEngine, CategorySearchEngine and OfflineSearchEngine run the
// two-step suggest/select flow. Each engine merges remote results with
// records from the DataProvidersRegistry, whose layers are shared by every
// engine a provider is registered with. RecordProvider backs history and
// favorites with a driven.RecordStore, and SettingsService maps the config
// store onto domain.AppSettings.
//
// Work runs on the engine's worker executor and callbacks are delivered on
// the caller's executor, at most once per task.
package services
