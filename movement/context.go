package movement

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// movementContext holds the transient state of one agent for one tick. Nothing in it survives the tick except the
// capacity of the contact buffer.
type movementContext struct {
	frame  *Frame
	params *settings.Params
	agent  *entity.Agent
	input  *entity.Input

	body world.Body
	up   mgl32.Vec3
	// centre is the world position of the collider centre, which is the agent's centre of mass.
	centre   mgl32.Vec3
	rotation mgl32.Quat
	yaw      float32

	contacts []world.Contact
	class    Classification
	intent   intent
	velocity mgl32.Vec3

	iterations int
	fields     *orderedmap.OrderedMap[string, any]
}

// query rebuilds the contact set around the current centre.
func (ctx *movementContext) query() {
	ctx.contacts = ctx.frame.World.Query(
		ctx.body.Collider,
		world.Transform{Position: ctx.centre, Rotation: ctx.rotation},
		ctx.params.ContactTolerance,
		ctx.params.Masks.Solid(),
		ctx.body.ID,
		ctx.params.MaxContacts,
		ctx.contacts[:0],
	)
}

// note records a trace field when tracing is enabled.
func (ctx *movementContext) note(key string, value any) {
	if ctx.fields != nil {
		ctx.fields.Set(key, value)
	}
}

// geometry returns the collider radius and the distance from the centre to the bottom of the collider.
func (ctx *movementContext) geometry() (radius, extent float32) {
	return ctx.body.Collider.Radius, ctx.body.Collider.Extent()
}
