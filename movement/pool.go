package movement

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/world"
)

// minContactCapacity is the smallest contact buffer handed to a context.
const minContactCapacity = 8

var ctxPool = sync.Pool{
	New: func() any {
		return &movementContext{contacts: make([]world.Contact, 0, minContactCapacity)}
	},
}

func newCtx(frame *Frame, hint int) *movementContext {
	ctx := ctxPool.Get().(*movementContext)
	ctx.frame = frame
	ctx.params = &frame.Params
	if cap(ctx.contacts) < hint {
		ctx.contacts = make([]world.Contact, 0, hint)
	}
	return ctx
}

func putCtx(ctx *movementContext) {
	ctx.reset()
	ctxPool.Put(ctx)
}

func (ctx *movementContext) reset() {
	ctx.frame = nil
	ctx.params = nil
	ctx.agent = nil
	ctx.input = nil
	ctx.body = world.Body{}
	ctx.up = mgl32.Vec3{}
	ctx.centre = mgl32.Vec3{}
	ctx.rotation = mgl32.Quat{}
	ctx.yaw = 0
	clear(ctx.contacts)
	ctx.contacts = ctx.contacts[:0]
	ctx.class = Classification{}
	ctx.intent = intent{}
	ctx.velocity = mgl32.Vec3{}
	ctx.iterations = 0
	ctx.fields = nil
}
