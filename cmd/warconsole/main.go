// Command warconsole is the terminal client for a running campaignd.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/voryn/starfront/internal/campaign"
)

var (
	serverURL string
	adminKey  string

	titleColor = color.New(color.FgCyan, color.Bold)
	goodColor  = color.New(color.FgGreen, color.Bold)
	badColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "warconsole",
		Short: "Starfront campaign console",
		Long: `Command console for a running Starfront campaign daemon.
Read commands are open; orders require the admin key.`,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("STARFRONT_API", "http://localhost:8080"), "campaignd base URL")
	rootCmd.PersistentFlags().StringVar(&adminKey, "key",
		os.Getenv("STARFRONT_ADMIN_KEY"), "admin bearer key for orders")

	rootCmd.AddCommand(
		statusCmd(),
		stateCmd(),
		advanceCmd(),
		queueCmd(),
		upgradeCmd(),
		dispatchCmd(),
		opCmd(),
		aarCmd(),
		eventsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ── HTTP plumbing ─────────────────────────────────────────────────────

var httpClient = &http.Client{Timeout: 15 * time.Second}

func get(path string, target any) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("reach %s: %w", serverURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// post sends an order and prints the engine's verdict.
func post(path string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	var result campaign.CommandResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%s: unreadable reply", resp.Status)
	}

	if result.OK {
		goodColor.Println("✓ order accepted")
		if result.State != nil {
			fmt.Printf("  day %d, %d action points remaining\n",
				result.State.Day, result.State.ActionPoints)
		}
		return nil
	}
	badColor.Printf("✗ order rejected: %s\n", result.Message)
	os.Exit(1)
	return nil
}

// ── Read commands ─────────────────────────────────────────────────────

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "One-screen campaign summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status map[string]any
			if err := get("/api/v1/status", &status); err != nil {
				return err
			}

			titleColor.Printf("\n%v — day %v\n\n", status["name"], status["day"])
			fmt.Printf("  Action points:  %v\n", status["action_points"])
			fmt.Printf("  Planet:         %v (control %.1f%%)\n",
				status["planet"], asFloat(status["planet_control"])*100)
			fmt.Printf("  Task force:     %s troops, readiness %.2f, cohesion %.2f\n",
				humanize.Comma(int64(asFloat(status["task_force_strength"]))),
				asFloat(status["task_force_readiness"]),
				asFloat(status["task_force_cohesion"]))
			fmt.Printf("  In transit:     %v shipments\n", status["shipments_in_transit"])
			fmt.Printf("  Queues:         %v factory, %v barracks\n",
				status["factory_jobs"], status["barracks_jobs"])

			if status["operation_active"] == true {
				warnColor.Printf("  Operation:      %v phase", status["operation_phase"])
				if status["awaiting_decision"] == true {
					badColor.Print("  [ORDERS REQUIRED]")
				}
				if status["pending_phase_report"] == true {
					warnColor.Print("  [REPORT PENDING]")
				}
				fmt.Println()
			} else {
				fmt.Println("  Operation:      none active")
			}
			fmt.Println()
			return nil
		},
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Full campaign state in tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap campaign.Snapshot
			if err := get("/api/v1/state", &snap); err != nil {
				return err
			}

			titleColor.Printf("\nDay %d — %d action points\n", snap.Day, snap.ActionPoints)

			fmt.Println("\nDepots:")
			depots := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Depot", "Ammo", "Fuel", "Med", "Infantry", "Walkers", "Support"}),
			)
			for _, d := range snap.Logistics.Depots {
				depots.Append([]string{
					d.Label,
					humanize.Comma(int64(d.Supplies.Ammo)),
					humanize.Comma(int64(d.Supplies.Fuel)),
					humanize.Comma(int64(d.Supplies.MedSpares)),
					humanize.Comma(int64(d.Units.Infantry)),
					humanize.Comma(int64(d.Units.Walkers)),
					humanize.Comma(int64(d.Units.Support)),
				})
			}
			depots.Render()

			fmt.Println("\nRoutes:")
			routes := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"From", "To", "Days", "Risk", "Status"}),
			)
			for _, r := range snap.Logistics.Routes {
				routes.Append([]string{
					r.Origin, r.Destination,
					strconv.Itoa(r.TravelDays),
					fmt.Sprintf("%.0f%%", r.InterdictionRisk*100),
					r.Status,
				})
			}
			routes.Render()

			if len(snap.Logistics.Shipments) > 0 {
				fmt.Println("\nIn transit:")
				ships := tablewriter.NewTable(os.Stdout,
					tablewriter.WithHeader([]string{"Shipment", "Route", "ETA", "Cargo", "Interdicted"}),
				)
				for _, sh := range snap.Logistics.Shipments {
					hit := ""
					if sh.Interdicted {
						hit = fmt.Sprintf("lost %.0f%%", sh.InterdictionLossPct*100)
					}
					ships.Append([]string{
						sh.ID[:8],
						sh.Origin + "→" + sh.Destination,
						fmt.Sprintf("%dd", sh.DaysRemaining),
						cargoSummary(sh.Supplies, sh.Units),
						hit,
					})
				}
				ships.Render()
			}

			printQueues(snap)

			tf := snap.TaskForce
			fmt.Printf("\nTask force at %s: %s troops (readiness %.2f, cohesion %.2f)\n",
				tf.Location, humanize.Comma(int64(tf.Units.Total())), tf.Readiness, tf.Cohesion)
			fmt.Printf("  carries %s\n", cargoSummary(tf.Supplies, campaign.UnitStock{}))

			printPlanet(snap.ContestedPlanet)
			printOperation(snap.Operation)
			return nil
		},
	}
}

func printQueues(snap campaign.Snapshot) {
	fmt.Printf("\nFactories %d/%d (%d/day)   Barracks %d/%d (%d/day)\n",
		snap.Production.Count, snap.Production.Max, snap.Production.DailyCapacity,
		snap.Barracks.Count, snap.Barracks.Max, snap.Barracks.DailyCapacity)

	if len(snap.Production.Queue) == 0 && len(snap.Barracks.Queue) == 0 {
		return
	}
	queue := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Facility", "Good", "Remaining", "ETA"}),
	)
	for _, j := range snap.Production.Queue {
		queue.Append([]string{"factory", j.Good.String(),
			humanize.Comma(int64(j.Remaining)), etaString(j.ETADays)})
	}
	for _, j := range snap.Barracks.Queue {
		queue.Append([]string{"barracks", j.Good.String(),
			humanize.Comma(int64(j.Remaining)), etaString(j.ETADays)})
	}
	queue.Render()
}

func printPlanet(p campaign.ContestedPlanet) {
	fmt.Printf("\n%s: control %.1f%%, fortification %.2f, enemy cohesion %.2f\n",
		p.Name, p.Control*100, p.Fortification, p.EnemyCohesion)
	fmt.Printf("  enemy estimate: %s–%s infantry, %s–%s walkers, %s–%s support (confidence %.0f%%)\n",
		humanize.Comma(int64(p.Intel.Infantry.Min)), humanize.Comma(int64(p.Intel.Infantry.Max)),
		humanize.Comma(int64(p.Intel.Walkers.Min)), humanize.Comma(int64(p.Intel.Walkers.Max)),
		humanize.Comma(int64(p.Intel.Support.Min)), humanize.Comma(int64(p.Intel.Support.Max)),
		p.IntelConfidence*100)
	for _, o := range p.Objectives {
		marker := "·"
		switch o.Status {
		case campaign.ObjectiveSecured:
			marker = goodColor.Sprint("✓")
		case campaign.ObjectiveContested:
			marker = warnColor.Sprint("~")
		}
		fmt.Printf("  %s %s (secures at %.0f%%)\n", marker, o.Label, o.SecureAt*100)
	}
}

func printOperation(op *campaign.OperationState) {
	if op == nil {
		return
	}
	warnColor.Printf("\nOperation %s against %s — %s phase, day %d of ~%d\n",
		op.TypeName, op.Target, op.CurrentPhaseName, op.DayInOperation, op.EstimatedTotalDays)
	if op.AwaitingDecision {
		badColor.Println("  orders required before the day can advance (op decide)")
	}
	if op.PendingPhaseRecord != nil {
		warnColor.Printf("  %s phase report pending review (op ack)\n", op.PendingPhaseRecord.PhaseName)
	}
	if t := op.LatestBattleDay; t != nil {
		fmt.Printf("  latest contact: advantage %+.2f, progress %+.3f, losses %d",
			t.Advantage, t.ProgressDelta, t.Losses.Total())
		if len(t.Tags) > 0 {
			fmt.Printf("  [%s]", strings.Join(t.Tags, " "))
		}
		fmt.Println()
	}
}

func advanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Advance the campaign one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/day/advance", struct{}{})
		},
	}
}

// ── Order commands ────────────────────────────────────────────────────

func queueCmd() *cobra.Command {
	var good string
	var qty int
	cmd := &cobra.Command{
		Use:   "queue [factory|barracks]",
		Short: "Queue a production or recruitment job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{"good": good, "quantity": qty}
			switch args[0] {
			case "factory":
				return post("/api/v1/production/queue", payload)
			case "barracks":
				return post("/api/v1/barracks/queue", payload)
			}
			return fmt.Errorf("unknown facility %q", args[0])
		},
	}
	cmd.Flags().StringVar(&good, "good", "", "what to produce (ammo, fuel, med_spares / infantry, walkers, support)")
	cmd.Flags().IntVar(&qty, "qty", 0, "quantity")
	cmd.MarkFlagRequired("good")
	cmd.MarkFlagRequired("qty")
	return cmd
}

func upgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade [factory|barracks]",
		Short: "Add a production facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "factory":
				return post("/api/v1/production/upgrade", struct{}{})
			case "barracks":
				return post("/api/v1/barracks/upgrade", struct{}{})
			}
			return fmt.Errorf("unknown facility %q", args[0])
		},
	}
}

func dispatchCmd() *cobra.Command {
	var from, to string
	var supplies campaign.SupplyStock
	var units campaign.UnitStock
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch a convoy between depots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/logistics/dispatch", map[string]any{
				"origin":      from,
				"destination": to,
				"supplies":    supplies,
				"units":       units,
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "origin depot")
	cmd.Flags().StringVar(&to, "to", "", "destination depot")
	cmd.Flags().IntVar(&supplies.Ammo, "ammo", 0, "ammo to ship")
	cmd.Flags().IntVar(&supplies.Fuel, "fuel", 0, "fuel to ship")
	cmd.Flags().IntVar(&supplies.MedSpares, "med", 0, "medical/spares to ship")
	cmd.Flags().IntVar(&units.Infantry, "infantry", 0, "infantry to move")
	cmd.Flags().IntVar(&units.Walkers, "walkers", 0, "walkers to move")
	cmd.Flags().IntVar(&units.Support, "support", 0, "support to move")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func opCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "op",
		Short: "Ground operation control",
	}

	var target, opType string
	start := &cobra.Command{
		Use:   "start",
		Short: "Open an operation against a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/operation/start", map[string]string{
				"target": target, "op_type": opType,
			})
		},
	}
	start.Flags().StringVar(&target, "target", "", "target id")
	start.Flags().StringVar(&opType, "type", "campaign", "raid, campaign, or siege")
	start.MarkFlagRequired("target")

	decide := &cobra.Command{
		Use:   "decide field=value ...",
		Short: "Submit the current phase's orders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make(map[string]string, len(args))
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected field=value, got %q", arg)
				}
				fields[k] = v
			}
			return post("/api/v1/operation/decisions", map[string]any{"fields": fields})
		},
	}

	ack := &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge the pending phase report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/operation/ack-phase", struct{}{})
		},
	}

	cmd.AddCommand(start, decide, ack)
	return cmd
}

func aarCmd() *cobra.Command {
	var ack bool
	cmd := &cobra.Command{
		Use:   "aar",
		Short: "Show (and optionally acknowledge) the last after-action report",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report campaign.AfterActionReport
			if err := get("/api/v1/aar", &report); err != nil {
				return err
			}

			titleColor.Printf("\nAfter-Action Report — %s %s (%d days)\n",
				report.OpType, report.Target, report.Days)
			switch report.Outcome {
			case "decisive_victory", "operational_success":
				goodColor.Printf("Outcome: %s\n\n", report.Outcome)
			default:
				badColor.Printf("Outcome: %s\n\n", report.Outcome)
			}

			fmt.Printf("Losses: %s ours, %s enemy\n",
				humanize.Comma(int64(report.Losses.Total())),
				humanize.Comma(int64(report.EnemyLosses.Total())))

			fmt.Println("\nTop factors:")
			factors := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Factor", "Delta", "Explanation"}),
			)
			for _, f := range report.TopFactors {
				factors.Append([]string{f.Name, fmt.Sprintf("%+.3f", f.Delta), f.Explanation})
			}
			factors.Render()

			fmt.Println("\nRecommendations:")
			for _, rec := range report.Recommendations {
				fmt.Printf("  • %s\n", rec)
			}

			if ack && !report.Acknowledged {
				fmt.Println()
				return post("/api/v1/aar/ack", struct{}{})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ack, "ack", false, "acknowledge after displaying")
	return cmd
}

func eventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the campaign event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []campaign.Event
			if err := get(fmt.Sprintf("/api/v1/events?limit=%d", limit), &events); err != nil {
				return err
			}
			for _, e := range events {
				fmt.Printf("day %3d  [%s]  %s\n", e.Day, e.Category, e.Description)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 30, "number of events")
	return cmd
}

// ── Formatting helpers ────────────────────────────────────────────────

func cargoSummary(s campaign.SupplyStock, u campaign.UnitStock) string {
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, humanize.Comma(int64(n))+" "+label)
		}
	}
	add(s.Ammo, "ammo")
	add(s.Fuel, "fuel")
	add(s.MedSpares, "med")
	add(u.Infantry, "infantry")
	add(u.Walkers, "walkers")
	add(u.Support, "support")
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, ", ")
}

func etaString(days int) string {
	if days <= 0 {
		return "—"
	}
	return fmt.Sprintf("%dd", days)
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}
