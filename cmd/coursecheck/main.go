// Command coursecheck validates course GeoJSON files before they are served.
// It checks:
//   - JSON structure (FeatureCollection with hole and hazard features)
//   - Coordinate ranges and hole path lengths
//   - Unique hole references and positive pars
//   - Hazard kinds, identifiers, and hole associations
//   - Hole length plausibility against par
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairwaylabs/caddie/game/catalog"
	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/geo"
	"github.com/urfave/cli/v3"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// Plausible hole lengths per par, in meters. Holes outside these bounds are
// flagged as warnings, not errors: urban pitch-and-putt layouts exist.
var parLengths = map[int][2]float64{
	3: {50, 250},
	4: {200, 450},
	5: {400, 650},
}

// validateCourse loads and validates a single course GeoJSON file.
func validateCourse(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}
	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	displayName, records, err := catalog.DecodeCourse(data)
	if err != nil {
		fail("Failed to decode course: %v", err)
		return result
	}

	courseID := strings.TrimSuffix(result.File, ".json")
	c, err := course.Build(courseID, records)
	if err != nil {
		fail("Invalid course: %v", err)
		return result
	}

	if displayName == "" {
		fail("Course has no display name")
	}

	// Per-hole checks: length plausibility and numbering gaps.
	numbers := c.HoleNumbers()
	hazardTotal := 0
	for i, n := range numbers {
		hole, _ := c.Hole(n)
		hazardTotal += len(hole.Hazards)

		length, err := geo.Distance(hole.Tee, hole.Pin)
		if err != nil {
			fail("Hole %d: %v", n, err)
			continue
		}
		if length < 1 {
			fail("Hole %d: tee and pin are at the same position", n)
		}
		if bounds, ok := parLengths[hole.Par]; ok {
			if length < bounds[0] || length > bounds[1] {
				result.Notes = append(result.Notes,
					fmt.Sprintf("Warning: hole %d is %.0fm for a par %d (expected %.0f-%.0fm)",
						n, length, hole.Par, bounds[0], bounds[1]))
			}
		}

		if i > 0 && n != numbers[i-1]+1 {
			result.Notes = append(result.Notes,
				fmt.Sprintf("Warning: hole numbering jumps from %d to %d", numbers[i-1], n))
		}
	}

	if result.Valid {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", displayName))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Holes: %d", c.NumHoles()))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Total par: %d", c.TotalPar()))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Hazards: %d", hazardTotal))
	}

	return result
}

// validateDir validates every course file in a directory. Returns false if
// any course is invalid.
func validateDir(dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("failed to find course files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no course files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateCourse(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				if !strings.HasPrefix(note, "✓") {
					fmt.Println("  ❌ " + note)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All courses are valid!")
	} else {
		fmt.Println("❌ Some courses have errors")
	}
	return allValid, nil
}

// describeCourse prints the hole-by-hole layout of one course.
func describeCourse(dir, courseID string) error {
	m, err := catalog.NewManager(dir)
	if err != nil {
		return err
	}
	c, err := m.LoadCourse(courseID)
	if err != nil {
		return err
	}

	fmt.Printf("Course: %s (%d holes, par %d)\n\n", c.Name(), c.NumHoles(), c.TotalPar())
	for _, n := range c.HoleNumbers() {
		hole, _ := c.Hole(n)
		length, _ := geo.Distance(hole.Tee, hole.Pin)
		fmt.Printf("Hole %d — par %d, %.0fm\n", n, hole.Par, length)
		fmt.Printf("  Tee: (%.4f, %.4f)  Pin: (%.4f, %.4f)\n",
			hole.Tee.Lat, hole.Tee.Lon, hole.Pin.Lat, hole.Pin.Lon)
		for _, hz := range hole.Hazards {
			fmt.Printf("  Hazard: %s (%s)\n", hz.ID, hz.Kind)
		}
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "coursecheck",
		Usage: "Validate and inspect course GeoJSON files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "course-dir",
				Value: "courses",
				Usage: "Directory containing course files",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate every course file in the course directory",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					allValid, err := validateDir(cmd.String("course-dir"))
					if err != nil {
						return err
					}
					if !allValid {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:      "describe",
				Usage:     "Print the hole-by-hole layout of a course",
				ArgsUsage: "<course-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					courseID := cmd.Args().First()
					if courseID == "" {
						return fmt.Errorf("course id is required")
					}
					return describeCourse(cmd.String("course-dir"), courseID)
				},
			},
		},
		// Bare invocation validates, matching the most common use.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			allValid, err := validateDir(cmd.String("course-dir"))
			if err != nil {
				return err
			}
			if !allValid {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
