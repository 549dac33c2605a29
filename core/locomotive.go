package core

import (
	"time"
	"unicode/utf8"
)

// LocomotiveTick is the delay between horizontal steps.
const LocomotiveTick = 40 * time.Millisecond

// LocomotiveOptions selects the train variant.
type LocomotiveOptions struct {
	Accident bool
	Fly      bool
	Logo     bool
	C51      bool
}

// ParseLocomotiveArgs reads -a, -f, -l and -c flags; anything else is ignored.
func ParseLocomotiveArgs(args []string) LocomotiveOptions {
	var opts LocomotiveOptions
	for _, arg := range args {
		switch arg {
		case "-a":
			opts.Accident = true
		case "-f":
			opts.Fly = true
		case "-l":
			opts.Logo = true
		case "-c":
			opts.C51 = true
		}
	}
	return opts
}

// Scene is a fixed size character grid drawn in place of the scrollback.
type Scene struct {
	cols  int
	rows  int
	cells [][]rune
}

// NewScene returns a blank scene of cols by rows cells.
func NewScene(cols, rows int) *Scene {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(spaces(cols))
	}
	return &Scene{cols: cols, rows: rows, cells: cells}
}

// Size returns the scene dimensions.
func (s *Scene) Size() (cols, rows int) { return s.cols, s.rows }

// Print writes pat at column x of row y, clipped to the grid.
func (s *Scene) Print(x, y int, pat string) {
	n := utf8.RuneCountInString(pat)
	if y < 0 || y >= s.rows || x >= s.cols || x+n < 0 {
		return
	}
	i := 0
	for _, r := range pat {
		cx := x + i
		i++
		if cx < 0 || cx >= s.cols {
			continue
		}
		s.cells[y][cx] = r
	}
}

// Lines returns the grid rows as strings.
func (s *Scene) Lines() []string {
	out := make([]string, s.rows)
	for i, row := range s.cells {
		out[i] = string(row)
	}
	return out
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

const smokeSlots = 32

type smokeParticle struct {
	x, y    int
	pattern int
	kind    int
}

// smokeRing holds the live smoke puffs. Old puffs are overwritten once the
// ring wraps; by then they have faded to blank.
type smokeRing struct {
	slots [smokeSlots]smokeParticle
	count int
}

// puff advances every live particle, erasing it before redrawing, and emits
// a new one at (x, y) every fourth column.
func (r *smokeRing) puff(scene *Scene, x, y int) {
	if x%4 != 0 {
		return
	}
	live := r.count
	if live > smokeSlots {
		live = smokeSlots
	}
	for i := 0; i < live; i++ {
		p := &r.slots[i]
		scene.Print(p.x, p.y, smokeEraser[p.pattern])
		p.y -= smokeDY[p.pattern]
		p.x += smokeDX[p.pattern]
		if p.pattern < smokePatterns-1 {
			p.pattern++
		}
		scene.Print(p.x, p.y, smoke[p.kind][p.pattern])
	}
	kind := r.count % 2
	scene.Print(x, y, smoke[kind][0])
	r.slots[r.count%smokeSlots] = smokeParticle{x: x, y: y, kind: kind}
	r.count++
}

type locomotive struct {
	opts  LocomotiveOptions
	scene *Scene
	smoke smokeRing
	x     int
	ticks int
}

// Locomotive drives a train across a full screen scene, one column per tick.
// The scene size is fixed when the first step runs.
func Locomotive(opts LocomotiveOptions) Routine {
	return &locomotive{opts: opts}
}

func (l *locomotive) Step(stage *Stage) Step {
	if l.scene == nil {
		l.scene = NewScene(stage.Columns(), stage.Rows())
		stage.SetScene(l.scene)
		l.x = stage.Columns() - 1
	}
	var gone bool
	switch {
	case l.opts.Logo:
		gone = l.drawLogo()
	case l.opts.C51:
		gone = l.drawC51()
	default:
		gone = l.drawD51()
	}
	if gone {
		return Finished()
	}
	l.ticks++
	l.x--
	return Sleep(LocomotiveTick)
}

func (l *locomotive) drawD51() bool {
	x := l.x
	if x < -d51Length {
		return true
	}
	cols, rows := l.scene.Size()
	y, dy := rows/2-5, 0
	if l.opts.Fly {
		y, dy = x/7+rows-cols/7-d51Height, 1
	}
	frame := d51Frame((d51Length + x) % d51Patterns)
	for i := 0; i <= d51Height; i++ {
		l.scene.Print(x, y+i, frame[i])
		l.scene.Print(x+53, y+i+dy, d51Coal[i])
	}
	if l.opts.Accident {
		l.drawMan(x+43, y+2)
		l.drawMan(x+47, y+2)
	}
	l.smoke.puff(l.scene, x+d51Funnel, y-1)
	return false
}

func (l *locomotive) drawC51() bool {
	x := l.x
	if x < -c51Length {
		return true
	}
	cols, rows := l.scene.Size()
	y, dy := rows/2-5, 0
	if l.opts.Fly {
		y, dy = x/7+rows-cols/7-c51Height, 1
	}
	frame := c51Frame((c51Length + x) % c51Patterns)
	for i := 0; i <= c51Height; i++ {
		l.scene.Print(x, y+i, frame[i])
		l.scene.Print(x+55, y+i+dy, c51Coal(i))
	}
	if l.opts.Accident {
		l.drawMan(x+45, y+3)
		l.drawMan(x+49, y+3)
	}
	l.smoke.puff(l.scene, x+c51Funnel, y-1)
	return false
}

// c51Coal shifts the D51 tender down one row to line up with the taller engine.
func c51Coal(i int) string {
	if i == 0 || i > d51Height {
		return d51Coal[d51Height]
	}
	return d51Coal[i-1]
}

func (l *locomotive) drawLogo() bool {
	x := l.x
	if x < -logoLength {
		return true
	}
	cols, rows := l.scene.Size()
	y, py1, py2, py3 := rows/2-3, 0, 0, 0
	if l.opts.Fly {
		y, py1, py2, py3 = x/6+rows-cols/6-logoHeight, 2, 4, 6
	}
	frame := logoFrame((logoLength + x) / 3 % logoPatterns)
	for i := 0; i <= logoHeight; i++ {
		l.scene.Print(x, y+i, frame[i])
		l.scene.Print(x+21, y+i+py1, logoCoal[i])
		l.scene.Print(x+42, y+i+py2, logoCar[i])
		l.scene.Print(x+63, y+i+py3, logoCar[i])
	}
	if l.opts.Accident {
		l.drawMan(x+14, y+1)
		l.drawMan(x+45, y+1+py2)
		l.drawMan(x+53, y+1+py2)
		l.drawMan(x+66, y+1+py3)
		l.drawMan(x+74, y+1+py3)
	}
	l.smoke.puff(l.scene, x+logoFunnel, y-1)
	return false
}

func (l *locomotive) drawMan(x, y int) {
	pose := ((logoLength + x) / 12) % 2
	if pose < 0 {
		pose = -pose
	}
	for i := 0; i < 2; i++ {
		l.scene.Print(x, y+i, man[pose][i])
	}
}
