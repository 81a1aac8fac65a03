package repositories

import "context"

// Repository aggregates the per-entity repositories behind one dependency.
type Repository interface {
	// Issue domain
	Issue() IssueRepository
	IssueUpdate() IssueUpdateRepository
	Notification() NotificationRepository

	// Identity and reference data (read-mostly)
	User() UserRepository
	Course() CourseRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
