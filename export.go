package astro

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/spatial/r3"
)

// CgCatalog is a Cosmographia catalog.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems is one object of a Cosmographia catalog.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory points to the file holding the states of an item.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate returns an error unless this is an interpolated states file.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, ".xyzv") {
		return errors.New("only InterpolatedStates are supported in Cosmographia trajectory types")
	}
	return nil
}

func (t *CgTrajectory) String() string {
	return t.Source + " as " + t.Type
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState is one record of an xyzv file: a Julian date, a position in km and
// a velocity in km/s.
type CgInterpolatedState struct {
	JD       float64
	Position r3.Vec
	Velocity r3.Vec
}

// NewCgInterpolatedState converts a state vector.
func NewCgInterpolatedState(sv StateVector) CgInterpolatedState {
	return CgInterpolatedState{JD: julian.TimeToJD(sv.Epoch), Position: r3.Scale(1e-3, sv.Position), Velocity: r3.Scale(1e-3, sv.Velocity)}
}

// FromText initializes from a record of seven items.
func (i *CgInterpolatedState) FromText(record []string) error {
	if len(record) != 7 {
		return fmt.Errorf("expected 7 fields, got %d", len(record))
	}
	var vals [7]float64
	for k, field := range record {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		vals[k] = val
	}
	i.JD = vals[0]
	i.Position = r3.Vec{X: vals[1], Y: vals[2], Z: vals[3]}
	i.Velocity = r3.Vec{X: vals[4], Y: vals[5], Z: vals[6]}
	return nil
}

// ToText converts to text for written output.
func (i CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%.9f %.6f %.6f %.6f %.9f %.9f %.9f", i.JD, i.Position.X, i.Position.Y, i.Position.Z, i.Velocity.X, i.Velocity.Y, i.Velocity.Z)
}

// ParseInterpolatedStates reads the records of an xyzv file, skipping comments.
func ParseInterpolatedStates(r io.Reader) ([]CgInterpolatedState, error) {
	var states []CgInterpolatedState
	cr := csv.NewReader(r)
	cr.Comma = ' '
	cr.Comment = '#'
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var state CgInterpolatedState
		if err := state.FromText(record); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(states)+1, err)
		}
		states = append(states, state)
	}
	return states, nil
}

// ExportConfig configures the exporting of an ephemeris.
type ExportConfig struct {
	Filename  string
	OutputDir string
	Cosmo     bool // xyzv states and a Cosmographia catalog
	AsCSV     bool
	Timestamp bool
	Every     int // export one state every Every, and the last one
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.Cosmo && !c.AsCSV
}

func (c ExportConfig) path(prefix, ext string) string {
	name := prefix + "-" + c.Filename
	if c.Timestamp {
		name += "-" + time.Now().UTC().Format("2006-01-02T15.04.05")
	}
	return filepath.Join(c.OutputDir, name+ext)
}

func (c ExportConfig) selected(eph Ephemeris) Ephemeris {
	if c.Every <= 1 {
		return eph
	}
	var out Ephemeris
	for i, sv := range eph {
		if i%c.Every == 0 || i == len(eph)-1 {
			out = append(out, sv)
		}
	}
	return out
}

// Export writes the ephemeris of the named spacecraft to the files selected by the configuration.
func Export(conf ExportConfig, name string, eph Ephemeris) error {
	if len(eph) == 0 {
		return errors.New("nothing to export")
	}
	eph = conf.selected(eph)
	if conf.Cosmo {
		xyzv := conf.path("prop", ".xyzv")
		if err := writeFile(xyzv, func(w io.Writer) error { return WriteInterpolatedStates(w, eph) }); err != nil {
			return err
		}
		catalog := cosmoCatalog(name, filepath.Base(xyzv), eph)
		if err := writeFile(conf.path("catalog", ".json"), func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog)
		}); err != nil {
			return err
		}
	}
	if conf.AsCSV {
		if err := writeFile(conf.path("ephemeris", ".csv"), func(w io.Writer) error { return WriteCSV(w, eph) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func cosmoCatalog(name, source string, eph Ephemeris) *CgCatalog {
	first, last := eph[0], eph.Final()
	frame := "ICRF"
	if first.Frame == EclipJ2000 {
		frame = "EclipticJ2000"
	}
	center := "?"
	if first.Observer != nil {
		center = first.Observer.Name
	}
	color := []float64{0.6, 1, 1}
	item := &CgItems{
		Class:           "spacecraft",
		Name:            name,
		StartTime:       first.Epoch.UTC().Format(time.RFC3339),
		EndTime:         last.Epoch.UTC().Format(time.RFC3339),
		Center:          center,
		TrajectoryFrame: frame,
		Trajectory:      &CgTrajectory{Type: "InterpolatedStates", Source: source},
		Label:           &CgLabel{Color: color, FadeSize: 1000000, ShowText: true},
		TrajectoryPlot:  &CgTrajectoryPlot{Color: color, LineWidth: 1, Duration: fmt.Sprintf("%d d", int(last.Epoch.Sub(first.Epoch).Hours()/24+1)), Lead: "0 d", SampleCount: 10},
	}
	return &CgCatalog{Version: "1.0", Name: name, Items: []*CgItems{item}}
}

// WriteInterpolatedStates writes the ephemeris as Cosmographia interpolated states.
func WriteInterpolatedStates(w io.Writer, eph Ephemeris) error {
	if _, err := fmt.Fprintf(w, `# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a UTC Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s
`, time.Now().UTC(), eph[0].Epoch.UTC()); err != nil {
		return err
	}
	for _, sv := range eph {
		if _, err := fmt.Fprintln(w, NewCgInterpolatedState(sv).ToText()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "# Simulation time end (UTC): %s\n", eph.Final().Epoch.UTC())
	return err
}

// WriteCSV writes the ephemeris in SI units, one state per row.
func WriteCSV(w io.Writer, eph Ephemeris) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, sv := range eph {
		if err := cw.Write([]string{sv.Epoch.UTC().Format(time.RFC3339Nano), f(sv.Position.X), f(sv.Position.Y), f(sv.Position.Z), f(sv.Velocity.X), f(sv.Velocity.Y), f(sv.Velocity.Z)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
