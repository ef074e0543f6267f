package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/org-management/internal/core/events"
	"github.com/frahmantamala/org-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the audit event consumer.`,
}

// Audit worker command
var auditWorkerCmd = &cobra.Command{
	Use:   "audit",
	Short: "Start the audit event worker",
	Long:  `Start a worker that consumes administrative events and writes an audit trail to the log.`,
	Run: func(cmd *cobra.Command, args []string) {
		startAuditWorker()
	},
}

func startAuditWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	auditTypes := []string{
		events.EventTypeUserRegistered,
		events.EventTypeRoleAssigned,
		events.EventTypeDepartmentDeleted,
		events.EventTypePrimaryDeptChanged,
	}
	for _, eventType := range auditTypes {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.Info("audit",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	logger.Info("audit worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("received signal, shutting down audit worker", "signal", sig)
	logger.Info("audit worker shutdown complete")
}

func init() {
	workerCmd.AddCommand(auditWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
