package dispatch

import "strings"

// chainLink is one resolved element of a full chain (root to endpoint),
// carrying the action plus its registration-time PathPart, used both to
// build the chain trie and to reconstruct a chain for URIFor.
type chainLink struct {
	action   *Action
	pathPart string
}

// chainNode is one position in the chain trie, reached by matching a
// sequence of literal PathPart segments. A node may simultaneously be a
// waypoint (midpoint != nil, consumed by deeper chains) and a terminal
// position for one or more endpoints.
type chainNode struct {
	children         map[string]*chainNode
	midpoint         *Action
	midpointCaptures int
	endpoints        []*Action
}

func newChainNode() *chainNode {
	return &chainNode{children: make(map[string]*chainNode)}
}

// chainCandidate is one fully-resolved match produced while descending
// the trie: the endpoint reached, the midpoints walked to reach it (root
// first), and the captures consumed by each midpoint in the same order.
type chainCandidate struct {
	endpoint  *Action
	midpoints []*Action
	captures  []string
}

// ChainedDispatchType implements the multi-segment composite dispatch
// algorithm of §4.3: a chain tree built at Freeze time from every
// registered Chained action, walked at request time.
type ChainedDispatchType struct {
	pending []*Action // every action registered with a "Chained" attribute, pre-Freeze

	root           *chainNode
	chains         map[*Action][]chainLink // endpoint -> full root-to-endpoint link list
	endpointsOrder []*Action                // stable registration order, for tie-breaks
}

func NewChainedDispatchType() *ChainedDispatchType {
	return &ChainedDispatchType{root: newChainNode(), chains: make(map[*Action][]chainLink)}
}

func (d *ChainedDispatchType) Name() string          { return "Chained" }
func (d *ChainedDispatchType) Precedence() int        { return 100 }
func (d *ChainedDispatchType) IsLowPrecedence() bool { return false }

// RegisterAction accepts any action declaring a Chained parent; whether
// it is an endpoint (Args) or a midpoint (CaptureArgs) is resolved at
// Freeze, once every action in the chain has been registered.
func (d *ChainedDispatchType) RegisterAction(action *Action) bool {
	if action.Private || !action.Attrs.Has("Chained") {
		return false
	}
	d.pending = append(d.pending, action)
	return true
}

// Freeze partitions pending registrations into midpoints and endpoints,
// walks each endpoint's Chained attribute upward to its root, and inserts
// the resulting link sequence into the chain trie.
func (d *ChainedDispatchType) Freeze(reg *ActionRegistry) error {
	midpointsByName := make(map[string]*Action)
	var endpoints []*Action
	for _, a := range d.pending {
		if a.Attrs.Has("Args") {
			endpoints = append(endpoints, a)
		} else if a.Attrs.Has("CaptureArgs") {
			midpointsByName[a.PrivateName] = a
		}
	}

	for _, endpoint := range endpoints {
		links, ok := d.resolveChain(endpoint, midpointsByName, reg)
		if !ok {
			continue // warning already logged by resolveChain
		}
		d.chains[endpoint] = links
		d.endpointsOrder = append(d.endpointsOrder, endpoint)
		d.insert(links)
	}
	return nil
}

// resolveChain walks action's Chained attribute upward to "/" (root),
// accumulating (action, PathPart) links, then reverses them into
// root-first order. It returns ok=false and logs a warning if any
// intermediate parent name is unregistered (§7 "Chained link with
// missing parent").
func (d *ChainedDispatchType) resolveChain(endpoint *Action, midpointsByName map[string]*Action, reg *ActionRegistry) ([]chainLink, bool) {
	var rev []chainLink
	cur := endpoint
	for {
		pathPart, _ := cur.Attrs.Get("PathPart")
		rev = append(rev, chainLink{action: cur, pathPart: pathPart})
		parentName, _ := cur.Attrs.Get("Chained")
		if parentName == "" || parentName == "/" {
			break
		}
		parent, ok := midpointsByName[parentName]
		if !ok {
			reg.log.WithField("action", endpoint.PrivateName).WithField("missingParent", parentName).
				Warn("Chained link with missing parent, chain dropped")
			return nil, false
		}
		cur = parent
	}
	links := make([]chainLink, len(rev))
	for i, l := range rev {
		links[len(rev)-1-i] = l
	}
	return links, true
}

func (d *ChainedDispatchType) insert(links []chainLink) {
	node := d.root
	for i, link := range links {
		child, ok := node.children[link.pathPart]
		if !ok {
			child = newChainNode()
			node.children[link.pathPart] = child
		}
		if i == len(links)-1 {
			child.endpoints = append(child.endpoints, link.action)
		} else if child.midpoint == nil {
			child.midpoint = link.action
			child.midpointCaptures = link.action.CaptureCount
		}
		node = child
	}
}

// Match descends the chain trie over prefix; ctx.Args already holds the
// segments the orchestrator's shortening loop has stripped as candidate
// trailing args, so a candidate is only viable if it consumes prefix
// exactly (no segments left over at the endpoint node) and its endpoint's
// declared arity accepts len(ctx.Args).
func (d *ChainedDispatchType) Match(ctx *Context, prefix []string) bool {
	if len(prefix) == 0 {
		return false
	}
	child, ok := d.root.children[prefix[0]]
	if !ok {
		return false
	}
	candidates := d.matchFrom(child, prefix[1:], nil, nil)
	if len(candidates) == 0 {
		return false
	}

	var best *chainCandidate
	for i := range candidates {
		c := &candidates[i]
		if !c.endpoint.MatchesArgCount(len(ctx.Args)) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		// (i) fixed Args preferred over variadic
		bestFixed := best.endpoint.ArgCount != ArgsVariadic
		cFixed := c.endpoint.ArgCount != ArgsVariadic
		if cFixed && !bestFixed {
			best = c
			continue
		}
		if bestFixed != cFixed {
			continue
		}
		// (ii) longer chain prefix preferred
		if len(c.midpoints) > len(best.midpoints) {
			best = c
			continue
		}
		// (iii) stable registration order: keep best (it was found first)
	}
	if best == nil {
		return false
	}

	steps := make([]ChainStep, 0, len(best.midpoints)+1)
	captureOffset := 0
	for _, mp := range best.midpoints {
		n := mp.CaptureCount
		steps = append(steps, ChainStep{Action: mp, Captures: best.captures[captureOffset : captureOffset+n]})
		captureOffset += n
	}
	steps = append(steps, ChainStep{Action: best.endpoint, Captures: nil})

	ctx.Namespace = best.endpoint.Namespace
	ctx.MatchString = strings.Join(prefix, "/")
	ctx.Captures = append([]string{}, best.captures...)
	ctx.Chain = steps
	return true
}

func (d *ChainedDispatchType) matchFrom(node *chainNode, segs []string, midpoints []*Action, captures []string) []chainCandidate {
	var out []chainCandidate
	if len(segs) == 0 {
		for _, ep := range node.endpoints {
			out = append(out, chainCandidate{endpoint: ep, midpoints: midpoints, captures: captures})
		}
	}
	if node.midpoint != nil {
		need := node.midpointCaptures
		if len(segs) >= need {
			rest := segs[need:]
			if len(rest) > 0 {
				if child, ok := node.children[rest[0]]; ok {
					nextMidpoints := append(append([]*Action{}, midpoints...), node.midpoint)
					nextCaptures := append(append([]string{}, captures...), segs[:need]...)
					out = append(out, d.matchFrom(child, rest[1:], nextMidpoints, nextCaptures)...)
				}
			}
		}
	}
	return out
}

// URIFor reconstructs a chain's path by walking its precomputed link
// list root-to-endpoint, emitting each midpoint's PathPart and consuming
// its CaptureArgs captures, per §4.3.
func (d *ChainedDispatchType) URIFor(action *Action, captures []string, args []string) (string, bool) {
	links, ok := d.chains[action]
	if !ok {
		return "", false
	}
	var segs []string
	pos := 0
	for i, link := range links {
		segs = append(segs, link.pathPart)
		if i == len(links)-1 {
			break // endpoint consumes no captures of its own
		}
		n := link.action.CaptureCount
		if pos+n > len(captures) {
			return "", false
		}
		segs = append(segs, captures[pos:pos+n]...)
		pos += n
	}
	segs = append(segs, args...)
	return "/" + strings.Join(segs, "/"), true
}

func (d *ChainedDispatchType) List() []RouteInfo {
	out := make([]RouteInfo, 0, len(d.endpointsOrder))
	for _, ep := range d.endpointsOrder {
		links := d.chains[ep]
		parts := make([]string, 0, len(links))
		for _, l := range links {
			parts = append(parts, l.pathPart)
		}
		out = append(out, RouteInfo{DispatchType: d.Name(), Pattern: "/" + strings.Join(parts, "/"), PrivateName: ep.PrivateName})
	}
	return out
}
