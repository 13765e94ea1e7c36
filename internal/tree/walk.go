package tree

// Action tells the walker whether to descend into a node.
type Action int

const (
	Continue Action = iota
	SkipChildren
)

// Visitor is called for every node reached by Walk.
type Visitor func(n Node, class Class) Action

// Walk traverses root and its descendants in pre-order, document order.
// Atomic nodes are visited but never descended into, whatever the visitor
// returns. Cyclic trees are not supported.
func Walk(root Node, c *Classifier, visit Visitor) {
	walk(root, c, visit, nil)
}

// WalkLeave is Walk with a second callback fired once a node and all the
// descendants the walk reached have been handled.
func WalkLeave(root Node, c *Classifier, visit Visitor, leave func(n Node, class Class)) {
	walk(root, c, visit, leave)
}

func walk(n Node, c *Classifier, visit Visitor, leave func(Node, Class)) {
	class := c.Classify(n)
	action := visit(n, class)
	if class == Atomic {
		action = SkipChildren
	}
	if action == Continue {
		for _, child := range n.Children() {
			walk(child, c, visit, leave)
		}
	}
	if leave != nil {
		leave(n, class)
	}
}
