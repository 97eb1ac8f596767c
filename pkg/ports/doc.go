/*
Package ports defines the driven ports (interfaces) of lousa.

These interfaces decouple the board and relay logic from storage backends.

# Key Interfaces

  - SettingsStore: persists the solver preferences (memory, JSON file, Redis).
  - SolutionArchive: keeps solved boards as Markdown documents (Loam).
  - AuditLog: records every relay call (SQLite).

Each interface ships a reusable contract suite (RunSettingsStoreContract and friends)
that adapters run in their own tests.
*/
package ports
