package trace

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/internal"
	"github.com/zeebo/xxh3"
)

// HashAgent hashes the bit patterns of an agent's movement state. Two agents hash equal only if every float of their
// state is bitwise identical.
func HashAgent(a *entity.Agent) uint64 {
	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)
	b := buf.AvailableBuffer()

	b = appendVec(b, a.Position)
	b = appendQuat(b, a.Orientation)
	b = appendFloat(b, a.Yaw)
	b = appendVec(b, a.Velocity)
	b = appendVec(b, a.AngularVelocity)

	s := a.Surface
	b = append(b, byte(s.Area), byte(s.Status))
	if s.Contacting {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	b = appendVec(b, s.Normal)
	b = appendVec(b, s.Velocity)
	b = appendQuat(b, s.Rotation)
	b = appendFloat(b, s.WaterDistance)
	b = appendFloat(b, s.Fraction)
	b = binary.LittleEndian.AppendUint32(b, uint32(s.Layers))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.Body))
	return xxh3.Hash(b)
}

func appendFloat(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

func appendVec(b []byte, v mgl32.Vec3) []byte {
	return appendFloat(appendFloat(appendFloat(b, v[0]), v[1]), v[2])
}

func appendQuat(b []byte, q mgl32.Quat) []byte {
	return appendVec(appendFloat(b, q.W), q.V)
}
