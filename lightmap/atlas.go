package lightmap

import (
	"errors"
	"fmt"
)

// ErrAtlasFull is returned when a rectangle cannot fit even an empty page
var ErrAtlasFull = errors.New("lightmap: rectangle larger than atlas page")

// Rect is a region of a lightmap page, in texels
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Node of the rectangle packing tree of one page
type Node struct {
	Rect
	Nodes  []Node
	Filled bool
}

// Page is one lightmap image being packed
type Page struct {
	ID   int
	Root Node
}

// Atlas hands out rectangles on fixed-size pages, opening a new page
// whenever the current ones are full
type Atlas struct {
	PageSize int32
	Padding  int32
	Pages    []*Page
}

func NewAtlas(pageSize, padding int32) *Atlas {
	return &Atlas{PageSize: pageSize, Padding: padding}
}

func (a *Atlas) newPage() *Page {
	page := &Page{
		ID: len(a.Pages),
		Root: Node{
			Rect: Rect{X: 0, Y: 0, Width: a.PageSize, Height: a.PageSize},
		},
	}
	a.Pages = append(a.Pages, page)
	return page
}

// Allocate reserves a width x height region (plus padding on every side)
// and returns the page and the usable region, padding excluded
func (a *Atlas) Allocate(width, height int32) (int, Rect, error) {
	w := width + 2*a.Padding
	h := height + 2*a.Padding
	if w > a.PageSize || h > a.PageSize {
		return 0, Rect{}, fmt.Errorf("%w: %dx%d on %d page", ErrAtlasFull, width, height, a.PageSize)
	}

	for _, page := range a.Pages {
		if node := AllocateRect(&page.Root, w, h); node != nil {
			return page.ID, a.inset(node.Rect), nil
		}
	}

	page := a.newPage()
	node := AllocateRect(&page.Root, w, h)
	if node == nil {
		return 0, Rect{}, fmt.Errorf("%w: %dx%d", ErrAtlasFull, width, height)
	}
	return page.ID, a.inset(node.Rect), nil
}

func (a *Atlas) inset(r Rect) Rect {
	return Rect{
		X:      r.X + a.Padding,
		Y:      r.Y + a.Padding,
		Width:  r.Width - 2*a.Padding,
		Height: r.Height - 2*a.Padding,
	}
}

// Navigate the packing tree and find an empty spot of the right size
func AllocateRect(node *Node, width int32, height int32) *Node {
	// Check child nodes if they exist
	if len(node.Nodes) > 0 {
		newNode := AllocateRect(&node.Nodes[0], width, height)
		if newNode != nil {
			return newNode
		}
		return AllocateRect(&node.Nodes[1], width, height)
	}

	// Already used
	if node.Filled {
		return nil
	}

	// Too small
	if node.Width < width || node.Height < height {
		return nil
	}

	// Allocate if it is a perfect fit
	if node.Width == width && node.Height == height {
		node.Filled = true
		return node
	}

	// Split by width or height
	if (node.Width - width) > (node.Height - height) {
		node.Nodes = []Node{
			{Rect: Rect{X: node.X, Y: node.Y, Width: width, Height: node.Height}},
			{Rect: Rect{X: node.X + width, Y: node.Y, Width: node.Width - width, Height: node.Height}},
		}
	} else {
		node.Nodes = []Node{
			{Rect: Rect{X: node.X, Y: node.Y, Width: node.Width, Height: height}},
			{Rect: Rect{X: node.X, Y: node.Y + height, Width: node.Width, Height: node.Height - height}},
		}
	}
	return AllocateRect(&node.Nodes[0], width, height)
}
