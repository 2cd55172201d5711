// Package app provides the composition layer for the intake client.
//
// # Architecture Role
//
// The app package sits above the domain and service layers and composes them
// into a running client: it wires storage, the backend REST client, the auth
// session, and the services, and owns their lifecycle through
// internal/app/system. It is NOT a business logic layer - business logic
// belongs in internal/app/services/.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, lifecycle
//	├── domain/             # Domain models (pure data and pure functions)
//	│   ├── deal/           # Application (deal) model and loan purpose
//	│   ├── borrower/       # Borrower and co-borrower model
//	│   ├── address/        # Address parsing and formatting
//	│   └── flow/           # Intake step graph
//	├── storage/            # Persistence interfaces and records
//	│   ├── interfaces.go   # StateStore, TokenStore, DraftStore
//	│   ├── memory/         # Session-scoped in-memory store
//	│   └── file/           # Durable JSON-file store
//	├── state/              # Flow state with write-through persistence
//	├── formtrack/          # Change tracking for save suppression
//	├── forms/              # Per-step form values and validation
//	├── services/
//	│   ├── progress/       # Advisory progress marks + async dispatcher
//	│   └── reconciler/     # The save pipeline (validate/create/patch/advance)
//	├── system/             # Lifecycle Service interface + Manager
//	└── metrics/            # Prometheus collectors
//
// # Responsibilities
//
// The app package is responsible for:
//
//   - Composing services with their storage and transport dependencies
//   - Defining the storage interfaces services depend on
//   - Providing the domain models shared across services
//   - Managing lifecycle (the progress dispatcher runs under the manager)
//
// The save pipeline itself lives in internal/app/services/reconciler; the
// REST transport lives in internal/backend; the mock server used by tests
// and the demo lives in internal/mockapi.
package app
