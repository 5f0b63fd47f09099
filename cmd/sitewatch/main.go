package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ankityadav/sitewatch/internal/config"
	"github.com/ankityadav/sitewatch/internal/mailer"
	"github.com/ankityadav/sitewatch/internal/monitor"
	"github.com/ankityadav/sitewatch/internal/notifier"
	"github.com/ankityadav/sitewatch/internal/probe"
	"github.com/ankityadav/sitewatch/internal/storage"
	"github.com/ankityadav/sitewatch/internal/tray"
	"github.com/ankityadav/sitewatch/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitewatch",
	Short: "Website uptime monitor with email alerts",
	Long:  "Watches your websites, records up/down transitions, and emails you when one goes down or recovers",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start monitoring with the interactive TUI",
	Run:   runStart,
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run monitoring in background (no UI)",
	Run:   runDaemon,
}

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run monitoring from the system tray",
	Run:   runTray,
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a site to watch",
	Args:  cobra.ExactArgs(1),
	Run:   runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watched sites",
	Run:   runList,
}

var removeCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a site by ID",
	Args:  cobra.ExactArgs(1),
	Run:   runRemove,
}

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Manage the notification email account",
}

var emailSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the admin email and app password",
	Run:   runEmailSet,
}

var emailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test email through the configured relay",
	Run:   runEmailTest,
}

var (
	emailAddress  string
	emailPassword string
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(emailCmd)
	emailCmd.AddCommand(emailSetCmd)
	emailCmd.AddCommand(emailTestCmd)

	emailSetCmd.Flags().StringVarP(&emailAddress, "address", "a", "", "Admin email address")
	emailSetCmd.Flags().StringVarP(&emailPassword, "password", "p", "", "App password for the admin account")
	emailTestCmd.Flags().StringVarP(&emailAddress, "address", "a", "", "Email address (defaults to stored)")
	emailTestCmd.Flags().StringVarP(&emailPassword, "password", "p", "", "App password (defaults to stored)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initDatabase() (*storage.Database, error) {
	dbPath, err := config.GetDatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	db, err := storage.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

func newMailer(db *storage.Database) *mailer.Mailer {
	return mailer.New(db, config.LoadMailRelay())
}

func runStart(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	mail := newMailer(db)

	// The monitor's change signal feeds the TUI through Program.Send;
	// the program is assigned before the first cycle can fire it.
	var p *tea.Program
	mon := monitor.New(db, probe.NewProber(), probe.NewGate(),
		[]monitor.Dispatcher{mail, notifier.New()},
		func() {
			if p != nil {
				p.Send(tui.SitesChangedMsg{})
			}
		},
	)

	p = tea.NewProgram(
		tui.New(db, mail, mon.CheckNow),
		tea.WithAltScreen(),
	)

	mon.Start()

	if _, err := p.Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}

	mon.Stop()
}

func runDaemon(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	mon := monitor.New(db, probe.NewProber(), probe.NewGate(),
		[]monitor.Dispatcher{newMailer(db)}, nil)
	mon.Start()

	log.Println("Monitoring started in daemon mode")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	mon.Stop()
}

func runTray(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	app := tray.New(db)
	mon := monitor.New(db, probe.NewProber(), probe.NewGate(),
		[]monitor.Dispatcher{newMailer(db), notifier.New()},
		app.Refresh,
	)
	app.SetMonitor(mon)

	mon.Start()
	app.Run()
	mon.Stop()
}

func runAdd(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	site, err := db.AddSite(strings.TrimSpace(args[0]))
	if err != nil {
		log.Fatalf("Failed to add site: %v", err)
	}

	fmt.Printf("Site added (ID: %d)\n", site.ID)
}

func runList(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	sites, err := db.ListSites()
	if err != nil {
		log.Fatalf("Failed to list sites: %v", err)
	}

	if len(sites) == 0 {
		fmt.Println("No sites configured")
		return
	}

	fmt.Printf("%-4s %-40s %-10s %-20s %-20s\n", "ID", "URL", "Status", "Last Check", "Down Since")
	fmt.Println(strings.Repeat("-", 96))

	for _, s := range sites {
		fmt.Printf("%-4d %-40s %-10s %-20s %-20s\n",
			s.ID, s.URL, s.Status, formatTime(s.LastChecked), formatTime(s.LastDownAt))
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Format("Jan 02 15:04:05")
}

func runRemove(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	var id uint
	fmt.Sscanf(args[0], "%d", &id)

	if err := db.DeleteSite(id); err != nil {
		log.Fatalf("Failed to remove site: %v", err)
	}

	fmt.Printf("Site %d removed\n", id)
}

func runEmailSet(cmd *cobra.Command, args []string) {
	if emailAddress == "" || emailPassword == "" {
		log.Fatalf("Both --address and --password are required")
	}

	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	if err := db.SetCredential(storage.KeyAdminEmail, emailAddress); err != nil {
		log.Fatalf("Failed to store email: %v", err)
	}
	if err := db.SetCredential(storage.KeyAdminPassword, emailPassword); err != nil {
		log.Fatalf("Failed to store password: %v", err)
	}

	fmt.Println("Notification email configured")
}

func runEmailTest(cmd *cobra.Command, args []string) {
	db, err := initDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	address := emailAddress
	password := emailPassword
	if address == "" {
		address, _ = db.GetCredential(storage.KeyAdminEmail)
	}
	if password == "" {
		password, _ = db.GetCredential(storage.KeyAdminPassword)
	}
	if address == "" || password == "" {
		log.Fatalf("No credentials given or stored; run 'sitewatch email set' first")
	}

	if err := newMailer(db).SendTest(address, password); err != nil {
		log.Fatalf("Test email failed: %v", err)
	}

	fmt.Println("Test email sent to " + address)
}
