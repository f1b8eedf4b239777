package dispatch

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ActionRegistry is the mapping (private name -> Action), insertion-ordered
// for stable diagnostic output, populated once during setup and never
// mutated after Freeze (§3 Data Model).
type ActionRegistry struct {
	actions     map[string]*Action
	order       []string // insertion order of actions, by private name
	controllers []*Controller

	log *logrus.Entry

	frozen bool
}

// NewActionRegistry returns an empty registry. A nil logger falls back to
// logrus.StandardLogger(), matching common/logger.go's convention.
func NewActionRegistry(log *logrus.Entry) *ActionRegistry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ActionRegistry{
		actions: make(map[string]*Action),
		log:     log,
	}
}

// classInfoRegex matches the "<method>_<attr>" class-info merge pattern
// (cutelystaction.cpp's QRegularExpression over QMetaClassInfo entries).
func classInfoRegex(method string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(method) + "_(.+)$")
}

// RegisterController inspects ctrl's exported methods by reflection and
// populates the registry, following cutelystdispatcher.cpp::setupActions
// and cutelystaction.cpp's per-method attribute parsing:
//
//  1. the first explicit parameter must be *Context, else the action is
//     marked invalid and skipped (a startup warning is logged);
//  2. subsequent string parameters are counted until a non-string marker
//     parameter (Global/Local/PathAttr/Args/ArgsAny/CaptureArgs) is
//     reached or the parameter list ends;
//  3. classInfo entries matching "<method>_<attr>" are merged into the
//     action's attribute multimap;
//  4. an action with no exposed Path/Chained attribute (and no explicit
//     "<method>_Private" entry) is private: reachable only via Forward.
//
// classInfo additionally recognizes the key "Namespace" to override the
// controller's derived namespace.
func (r *ActionRegistry) RegisterController(ctrl interface{}, classInfo map[string]string) (*Controller, error) {
	if r.frozen {
		return nil, fmt.Errorf("dispatch: cannot register %T after Freeze", ctrl)
	}

	v := reflect.ValueOf(ctrl)
	t := v.Type()
	if t.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("dispatch: controller %T must be registered as a pointer", ctrl)
	}
	className := t.Elem().Name()
	ns := resolveNamespace(className, classInfo)

	ctl := &Controller{Name: className, Namespace: ns, value: ctrl}
	r.log.WithField("controller", className).WithField("namespace", ns).Debug("found a controller")

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		action, handler, ok := r.buildAction(ctl, v, m, classInfo)
		if !ok {
			continue // not an action method (e.g. an unrelated exported helper)
		}
		action.Handler = handler

		switch m.Name {
		case "Begin":
			ctl.Begin = action
		case "Auto":
			ctl.Auto = action
		case "End":
			ctl.End = action
		}

		ctl.Actions = append(ctl.Actions, action)

		if !action.Valid {
			r.log.WithField("action", action.PrivateName).Warn("action skipped: first parameter is not *dispatch.Context")
			continue
		}

		if _, exists := r.actions[action.PrivateName]; exists {
			r.log.WithField("action", action.PrivateName).Warn("duplicate private name, keeping first registration")
			continue
		}
		r.actions[action.PrivateName] = action
		r.order = append(r.order, action.PrivateName)
	}

	r.controllers = append(r.controllers, ctl)
	return ctl, nil
}

// buildAction inspects one reflected method and returns the parsed Action
// plus a bound HandlerFunc. ok is false when the method is not recognized
// as an action (no parameters at all beyond the receiver); such methods
// are silently skipped rather than
// warned about, since an ordinary unexported helper exposed as a method
// for other reasons is not a registration error.
func (r *ActionRegistry) buildAction(ctl *Controller, recv reflect.Value, m reflect.Method, classInfo map[string]string) (*Action, HandlerFunc, bool) {
	mtype := m.Func.Type()
	privateName := "/" + strings.Trim(ctl.Namespace+"/"+m.Name, "/")

	action := &Action{
		PrivateName: privateName,
		Namespace:   ctl.Namespace,
		Name:        m.Name,
		Controller:  ctl,
		Attrs:       NewAttributes(),
		Valid:       true,
	}

	// mtype.In(0) is the receiver; In(1), if present, must be *Context.
	if mtype.NumIn() < 2 {
		return nil, nil, false
	}
	if mtype.In(1) != typeContext {
		action.Valid = false
		return action, nil, true
	}

	argCount := 0
	var marker reflect.Type
	for i := 2; i < mtype.NumIn(); i++ {
		pt := mtype.In(i)
		if pt == typeString {
			argCount++
			continue
		}
		marker = pt
		break
	}

	switch marker {
	case typeGlobal:
		// Global ignores the controller's namespace entirely. The URL
		// segment is derived from the method name the same way a
		// controller's namespace is derived from its struct name (§P1),
		// since Go's exported-method capitalization has no bearing on
		// the case convention of the URL it should match.
		action.Attrs.Add("Path", "/"+derivePathSegment(m.Name))
	case typeLocal:
		// Local resolves under the controller's own namespace.
		action.Attrs.Add("Path", strings.Trim(ctl.Namespace+"/"+derivePathSegment(m.Name), "/"))
	case typePathAttr:
		// Bare Path matches the controller's namespace itself, with no
		// method-name segment appended.
		action.Attrs.Add("Path", ctl.Namespace)
	case typeArgs:
		action.ArgCount = argCount
		action.Attrs.Add("Args", fmt.Sprintf("%d", argCount))
	case typeArgsAny:
		action.ArgCount = ArgsVariadic
		action.Attrs.Add("Args", "")
	case typeCaptureArgs:
		action.CaptureCount = argCount
		action.Attrs.Add("CaptureArgs", fmt.Sprintf("%d", argCount))
	}

	// Merge class-info entries matching "<method>_<attr>".
	re := classInfoRegex(m.Name)
	// Iterate classInfo in a stable (sorted) key order so repeated
	// registrations produce identical attribute ordering.
	keys := make([]string, 0, len(classInfo))
	for k := range classInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		match := re.FindStringSubmatch(k)
		if match == nil {
			continue
		}
		attr := match[1]
		value := classInfo[k]
		action.Attrs.Add(attr, value)
		switch attr {
		case "Args":
			if value == "" {
				action.ArgCount = ArgsVariadic
			} else {
				fmt.Sscanf(value, "%d", &action.ArgCount)
			}
		case "CaptureArgs":
			fmt.Sscanf(value, "%d", &action.CaptureCount)
		case "Private":
			action.Private = true
		}
	}

	if action.Attrs.Has("Private") {
		action.Private = true
	}
	if !action.Attrs.Has("Path") && !action.Attrs.Has("Chained") {
		action.Private = true
	}

	handler := func(ctx *Context, args []string) (bool, error) {
		in := make([]reflect.Value, 0, mtype.NumIn()-1)
		in = append(in, reflect.ValueOf(ctx))
		for i := 0; i < argCount; i++ {
			if i < len(args) {
				in = append(in, reflect.ValueOf(args[i]))
			} else {
				in = append(in, reflect.ValueOf(""))
			}
		}
		if marker != nil {
			in = append(in, reflect.New(marker).Elem())
		}
		out := m.Func.Call(append([]reflect.Value{recv}, in...))
		var ok bool
		var err error
		if len(out) > 0 {
			if b, isBool := out[0].Interface().(bool); isBool {
				ok = b
			}
		}
		if len(out) > 1 {
			if e, isErr := out[1].Interface().(error); isErr {
				err = e
			}
		}
		return ok, err
	}

	return action, handler, true
}

// Lookup resolves a private name to its Action.
func (r *ActionRegistry) Lookup(privateName string) (*Action, bool) {
	a, ok := r.actions[privateName]
	return a, ok
}

// Actions returns every registered action in insertion order.
func (r *ActionRegistry) Actions() []*Action {
	out := make([]*Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actions[name])
	}
	return out
}

// Controllers returns every registered controller in registration order.
func (r *ActionRegistry) Controllers() []*Controller {
	return append([]*Controller(nil), r.controllers...)
}

// DumpTable returns one RouteInfo per registered action, in registration
// order, with PrivateName set and Pattern holding the action's method
// name; DispatchType is left empty and no controller class is included.
func (r *ActionRegistry) DumpTable() []RouteInfo {
	out := make([]RouteInfo, 0, len(r.order))
	for _, name := range r.order {
		a := r.actions[name]
		out = append(out, RouteInfo{PrivateName: a.PrivateName, Pattern: a.Name})
	}
	return out
}
