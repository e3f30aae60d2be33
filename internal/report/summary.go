package report

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
)

// FleetSummary renders a snapshot as a plain-text table, one drone per line.
func FleetSummary(snap fleet.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fleet at T=%d (steps=%d, %d servers, %d/%d airborne)\n",
		snap.Tick, snap.Steps, len(snap.Servers), snap.Airborne(), len(snap.Drones))
	fmt.Fprintf(&sb, "%-10s %-9s %-15s %-15s %6s %6s %6s  %s\n",
		"drone", "status", "position", "goal", "speed", "power", "az", "server")
	for _, d := range snap.Drones {
		server := d.TargetServer
		if server == "" {
			server = "-"
		}
		flag := ""
		if d.Collision {
			flag = " !"
		}
		fmt.Fprintf(&sb, "%-10s %-9s %-15s %-15s %5.0f%% %5.0f%% %6.0f  %s%s\n",
			d.Name, d.Status, fmtVec(d.Position), fmtVec(d.Goal),
			d.Speed/fleet.MaxSpeed*100, d.Power, d.Azimuth, server, flag)
	}
	return sb.String()
}

func fmtVec(v fleet.Vec2) string {
	return fmt.Sprintf("%.0f,%.0f", v.X, v.Y)
}
