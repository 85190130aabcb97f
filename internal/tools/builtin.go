package tools

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"personal-mcp-server/internal/profile"
)

// Built-in tool names.
const (
	AboutToolName   = "get_about"
	CVToolName      = "get_cv"
	WorkoutToolName = "get_workout"
)

// Options tunes the built-in tools.
type Options struct {
	// CVFormat selects the get_cv payload shape. Defaults to text.
	CVFormat profile.CVFormat
	// Pick returns a uniformly distributed index in [0, n). It must be safe
	// for concurrent use. Defaults to math/rand/v2.IntN.
	Pick func(n int) int
}

// NewDefaultRegistry registers get_about, get_cv and get_workout, in that order.
func NewDefaultRegistry(p *profile.Profile, opts Options) (*Registry, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if opts.CVFormat == "" {
		opts.CVFormat = profile.CVFormatText
	}
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}

	cv, err := newCVTool(&p.CV, opts.CVFormat)
	if err != nil {
		return nil, err
	}
	return NewRegistry(
		newAboutTool(p.About, ownerName(p)),
		cv,
		newWorkoutTool(p.Workouts, opts.Pick),
	)
}

func ownerName(p *profile.Profile) string {
	if p.Server.Author != "" {
		return p.Server.Author
	}
	return p.CV.PersonalInfo.Name
}

func newAboutTool(about, owner string) *Tool {
	return &Tool{
		Name:        AboutToolName,
		Title:       "Get information about " + owner,
		Description: "Returns basic information about " + owner + ", including interests and skills.",
		Handler: func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return JSONTextResult(about)
		},
	}
}

// newCVTool renders the payload up front; the CV never changes at runtime.
func newCVTool(cv *profile.CV, format profile.CVFormat) (*Tool, error) {
	doc, err := cv.Document(format)
	if err != nil {
		return nil, err
	}
	payload, err := encodeJSON(doc)
	if err != nil {
		return nil, err
	}
	return &Tool{
		Name:        CVToolName,
		Title:       CVToolName,
		Description: "Returns my CV in JSON format",
		Handler: func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return TextResult(payload), nil
		},
	}, nil
}

func newWorkoutTool(workouts []profile.Workout, pick func(int) int) *Tool {
	return &Tool{
		Name:        WorkoutToolName,
		Title:       WorkoutToolName,
		Description: fmt.Sprintf("Returns a random kettlebell workout from a list of %d workouts. Get after it!", len(workouts)),
		Handler: func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if len(workouts) == 0 {
				return nil, profile.ErrNoWorkouts
			}
			return TextResult(FormatWorkout(workouts[pick(len(workouts))])), nil
		},
	}
}

// FormatWorkout renders a workout as the markdown-ish text returned to clients.
func FormatWorkout(w profile.Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **%s**\n\n", w.Name)
	fmt.Fprintf(&b, "📝 **Description**: %s\n\n", w.Description)
	fmt.Fprintf(&b, "⏱️ **Duration**: %s\n", w.Duration)
	fmt.Fprintf(&b, "💪 **Difficulty**: %s\n\n", w.Difficulty)
	b.WriteString("**Exercises**:\n")
	for i, ex := range w.Exercises {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s", ex)
	}
	b.WriteString("\n\n🔥 **Get ready to work!**")
	return b.String()
}
