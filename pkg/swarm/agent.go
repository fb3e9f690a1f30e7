package swarm

// Agent is one simulated drone.
type Agent struct {
	ID       int
	Position Vec2
	Velocity Vec2
}

// AgentView is the read-only projection of an agent handed to hosts.
type AgentView struct {
	ID int     `json:"id" csv:"id"`
	X  float64 `json:"x" csv:"x"`
	Y  float64 `json:"y" csv:"y"`
}

// View projects the agent for external consumers.
func (a Agent) View() AgentView {
	return AgentView{ID: a.ID, X: a.Position.X, Y: a.Position.Y}
}

// spawnAgents places count agents uniformly inside the padded bounds with
// velocity components drawn independently from [-1, 1).
func spawnAgents(cfg Config, src Source) []Agent {
	agents := make([]Agent, cfg.AgentCount)
	spanX := cfg.Width - 2*cfg.BoundaryMargin
	spanY := cfg.Height - 2*cfg.BoundaryMargin

	for i := range agents {
		agents[i] = Agent{
			ID: i,
			Position: Vec2{
				X: cfg.BoundaryMargin + src.Float64()*spanX,
				Y: cfg.BoundaryMargin + src.Float64()*spanY,
			},
			Velocity: Vec2{
				X: src.Float64()*2 - 1,
				Y: src.Float64()*2 - 1,
			},
		}
	}
	return agents
}

// reflectAxis integrates one axis and bounces it off [lo, hi].
// A candidate on or beyond a wall flips the velocity and is clamped to it.
func reflectAxis(pos, vel, speed, lo, hi float64) (float64, float64) {
	next := pos + vel*speed
	if next <= lo || next >= hi {
		vel = -vel
		next = clamp(next, lo, hi)
	}
	return next, vel
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
