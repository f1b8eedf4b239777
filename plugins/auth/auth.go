// Package auth provides a JWT authentication/authorization plugin for
// dispatch.Engine, demonstrating §9 Open Question 3's resolution: an
// ActionClass-style interception implemented as a beforeDispatch hook
// that inspects the matched action's attributes and either calls
// ctx.Detach() (rejecting the request before any controller method
// runs) or lets the chain proceed unmodified.
package auth

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	redisqueue "github.com/evalgo-org/cutelyst-go/queue/redis"

	"github.com/evalgo-org/cutelyst-go/dispatch"
	"github.com/evalgo-org/cutelyst-go/security"
)

// auditQueueName is the queue/redis.Queue queue name rejected requests are
// enqueued to when a Plugin is built with an audit queue.
const auditQueueName = "auth_rejections"

// contextKey namespaces this plugin's private Context.Plugins stash
// sub-mapping so it never collides with another plugin's keys.
const contextKey = "auth"

const (
	stashSubject = "subject"
	stashRoles   = "roles"
)

// Plugin authenticates the bearer token on every action carrying an
// "Auth" attribute and, for actions additionally carrying a "RoleACL"
// attribute, verifies the token's "role" claim is one of the
// comma-separated roles named by that attribute's value.
type Plugin struct {
	jwt   *security.JWTService
	log   *logrus.Entry
	audit *redisqueue.Queue // optional: every rejection is enqueued here
}

// New wraps an existing security.JWTService (kept and reused from the
// teacher's stack, not reimplemented) as a dispatch plugin.
func New(jwt *security.JWTService, log *logrus.Entry) *Plugin {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Plugin{jwt: jwt, log: log}
}

// WithAuditQueue makes every rejected request enqueue an audit Job onto
// queue/redis.Queue's "auth_rejections" queue, for a separate consumer
// (outside the request path) to process asynchronously. Returns p for
// chaining after New.
func (p *Plugin) WithAuditQueue(q *redisqueue.Queue) *Plugin {
	p.audit = q
	return p
}

// Install registers the plugin's beforeDispatch hook on engine's Hooks.
func (p *Plugin) Install(engine *dispatch.Engine) {
	engine.Hooks().AddBeforeDispatch(p.beforeDispatch)
}

func (p *Plugin) beforeDispatch(ctx *dispatch.Context) {
	action := lastAction(ctx)
	if action == nil || !action.Attrs.Has("Auth") {
		return
	}

	token, ok := bearerToken(ctx.Req.Header("Authorization"))
	if !ok {
		p.reject(ctx, 401, "missing bearer token")
		return
	}

	claims, err := p.jwt.ValidateToken(token)
	if err != nil {
		p.log.WithError(err).Warn("rejected request with invalid bearer token")
		p.reject(ctx, 401, "invalid token")
		return
	}

	subject := claims.Subject()
	stash := ctx.PluginStash(contextKey)
	stash[stashSubject] = dispatch.NewStashString(subject)

	if acl, ok := action.Attrs.Get("RoleACL"); ok {
		roleStr, _ := security.ExtractRole(claims)
		stash[stashRoles] = dispatch.NewStashString(roleStr)
		if !roleAllowed(roleStr, acl) {
			p.reject(ctx, 403, "role not permitted")
			return
		}
	}
}

// lastAction returns the action that will actually be invoked for this
// request: the sole action of a Path/Index/Default match, or the
// Chained endpoint (the final chain step) for a Chained match.
func lastAction(ctx *dispatch.Context) *dispatch.Action {
	if len(ctx.Chain) == 0 {
		return nil
	}
	return ctx.Chain[len(ctx.Chain)-1].Action
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimPrefix(header, prefix), true
}

func roleAllowed(role, acl string) bool {
	for _, allowed := range strings.Split(acl, ",") {
		if strings.TrimSpace(allowed) == role {
			return true
		}
	}
	return false
}

func (p *Plugin) reject(ctx *dispatch.Context, status int, message string) {
	ctx.Resp.SetStatus(status)
	ctx.Resp.WriteBody([]byte(message))
	if p.audit != nil {
		action := lastAction(ctx)
		actionID := "unknown"
		if action != nil {
			actionID = action.PrivateName
		}
		if err := p.audit.Enqueue(redisqueue.Job{
			ActionID:   actionID,
			QueueName:  auditQueueName,
			EnqueuedAt: time.Now(),
		}); err != nil {
			p.log.WithError(err).Warn("failed to enqueue auth rejection audit job")
		}
	}
	ctx.Detach()
}
