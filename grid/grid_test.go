package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/pointloc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name      string
		points    []r3.Vec
		occupancy float64
		opts      []Option
	}{
		{"Empty", nil, 10, nil},
		{"SinglePoint", []r3.Vec{{X: 1, Y: 2, Z: 3}}, 10, nil},
		{"FlatZ", []r3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}}, 10, nil},
		{"LineX", []r3.Vec{{X: 0}, {X: 1}, {X: 2}}, 10, nil},
		{"NaN", []r3.Vec{{}, {X: math.NaN(), Y: 1, Z: 1}}, 10, nil},
		{"Inf", []r3.Vec{{}, {X: 1, Y: math.Inf(1), Z: 1}}, 10, nil},
		{"ZeroOccupancy", []r3.Vec{{}, {X: 1, Y: 1, Z: 1}}, 0, nil},
		{"NegativeOccupancy", []r3.Vec{{}, {X: 1, Y: 1, Z: 1}}, -3, nil},
		{"NaNOccupancy", []r3.Vec{{}, {X: 1, Y: 1, Z: 1}}, math.NaN(), nil},
		{"TooManyCells", testutil.NewRNG(1).UniformPoints(1000), 1, []Option{WithMaxCells(10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.points, tt.occupancy, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrConfiguration)

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.NotEmpty(t, ce.Reason)
		})
	}
}

func TestBuild_CellSize(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points := rng.UniformPoints(10000)

	g, err := Build(points, 10)
	require.NoError(t, err)

	// box volume is just below 1, so cellSize is just below 0.1
	assert.InDelta(t, 0.1, g.CellSize(), 0.001)
	assert.Equal(t, 10.0, g.Occupancy())
	assert.Equal(t, 10000, g.Len())

	b := g.Bounds()
	assert.Equal(t, Cell{}, b.Min)
	nx, ny, nz := b.Dims()
	assert.Equal(t, nx*ny*nz, g.NumCells())
	assert.InDelta(t, 1000, g.NumCells(), 350)

	avg := float64(g.Len()) / float64(g.NumCells())
	assert.InDelta(t, 10, avg, 3)
}

func TestBuild_Partition(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points := rng.ClusteredPoints(3000, 5, 0.05)

	g, err := Build(points, 4)
	require.NoError(t, err)

	owner := make([]int, len(points))
	for i := range owner {
		owner[i] = -1
	}

	b := g.Bounds()
	cells := 0
	for z := b.Min.Z; z <= b.Max.Z; z++ {
		for y := b.Min.Y; y <= b.Max.Y; y++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				c := Cell{X: x, Y: y, Z: z}
				in := g.PointsInCell(c)
				for k, i := range in {
					require.Equal(t, -1, owner[i], "point %d in two cells", i)
					owner[i] = cells
					assert.Equal(t, c, g.CellOf(i))
					assert.Equal(t, c, g.CellAt(g.Position(i)))
					if k > 0 {
						assert.Less(t, in[k-1], i, "bucket order must follow insertion order")
					}
				}
				cells++
			}
		}
	}

	for i, o := range owner {
		assert.NotEqual(t, -1, o, "point %d not bucketed", i)
	}
}

func TestPointsInCell_OutsideBounds(t *testing.T) {
	g, err := Build(testutil.NewRNG(1).UniformPoints(100), 5)
	require.NoError(t, err)

	b := g.Bounds()
	assert.Empty(t, g.PointsInCell(Cell{X: b.Min.X - 1}))
	assert.Empty(t, g.PointsInCell(Cell{X: b.Max.X + 1, Y: b.Max.Y, Z: b.Max.Z}))
	assert.Empty(t, g.PointsInCell(Cell{X: 0, Y: 0, Z: b.Max.Z + 7}))
}

func TestPointsInCell_AppendDoesNotCorrupt(t *testing.T) {
	g, err := Build(testutil.NewRNG(2).UniformPoints(500), 10)
	require.NoError(t, err)

	c := g.CellOf(0)
	id := g.linear(c)
	if id+1 == g.NumCells() {
		id--
		c = g.cellFromLinear(id)
	}
	next := g.cellFromLinear(id + 1)

	own := append([]int(nil), g.PointsInCell(c)...)
	neighbour := append([]int(nil), g.PointsInCell(next)...)

	in := g.PointsInCell(c)
	in = append(in, -1)
	assert.Equal(t, -1, in[len(in)-1])

	assert.Equal(t, own, g.PointsInCell(c))
	assert.Equal(t, neighbour, g.PointsInCell(next))
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: Cell{X: -1, Y: 0, Z: 2}, Max: Cell{X: 3, Y: 0, Z: 4}}

	assert.True(t, b.Contains(Cell{X: 0, Y: 0, Z: 3}))
	assert.False(t, b.Contains(Cell{X: 4, Y: 0, Z: 3}))

	nx, ny, nz := b.Dims()
	assert.Equal(t, []int{5, 1, 3}, []int{nx, ny, nz})

	assert.True(t, b.CoveredBy(Cell{X: 1, Y: 0, Z: 3}, 2))
	assert.False(t, b.CoveredBy(Cell{X: 1, Y: 0, Z: 3}, 1))
	assert.False(t, b.CoveredBy(Cell{X: 3, Y: 0, Z: 3}, 3))
	assert.True(t, b.CoveredBy(Cell{X: 3, Y: 0, Z: 3}, 4))
}

func TestCell(t *testing.T) {
	c := Cell{X: 1, Y: -2, Z: 3}
	assert.Equal(t, 4, c.Chebyshev(Cell{X: 0, Y: 2, Z: 3}))
	assert.Equal(t, "[1 -2 3]", c.String())
}
