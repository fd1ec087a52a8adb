package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteI64(h, &tmp, w.cfg.Seed)

	for _, a := range w.dir.Hunters() {
		rec := a.Record()
		h.Write([]byte(rec.ID))
		digestWriteU64(h, &tmp, rec.Num)
		h.Write([]byte{byte(rec.State), boolByte(rec.HasLastKnown), boolByte(rec.EverPerceived), boolByte(rec.HasFlank), boolByte(rec.Disabled)})
		h.Write([]byte(rec.TargetID))
		digestWriteVec(h, &tmp, rec.LastKnown)
		digestWriteVec(h, &tmp, rec.FlankSlot)
		digestWriteVec(h, &tmp, rec.Velocity)
		for _, f := range []float64{rec.Speed, rec.FrozenLeft, rec.SearchWait, rec.FlankTimer, rec.IdleCue, rec.ChaseCue} {
			digestWriteF64(h, &tmp, f)
		}
		digestWriteU64(h, &tmp, rec.AlertSeq)
		h.Write(rec.RNG)
		if nav := w.navs[rec.ID]; nav != nil {
			st := nav.State()
			digestWriteVec(h, &tmp, st.Pos)
			digestWriteVec(h, &tmp, st.Dest)
			h.Write([]byte{boolByte(st.HasDest)})
		}
	}

	for _, r := range w.runners {
		st := r.State()
		h.Write([]byte(st.ID))
		digestWriteVec(h, &tmp, st.Pos)
		digestWriteVec(h, &tmp, st.Waypoint)
		h.Write([]byte{byte(st.Mode), boolByte(st.Neutralized), boolByte(st.Held)})
		digestWriteF64(h, &tmp, st.Stamina)
		digestWriteF64(h, &tmp, st.ModeLeft)
		h.Write(st.RNG)
	}

	c := w.dir.Counters()
	digestWriteU64(h, &tmp, c.NextNum)
	digestWriteU64(h, &tmp, c.AlertSeq)
	digestWriteU64(h, &tmp, w.nextHunter)
	digestWriteU64(h, &tmp, w.nextPrey)

	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func digestWriteVec(h hashWriter, tmp *[8]byte, v Vec3) {
	digestWriteF64(h, tmp, v.X)
	digestWriteF64(h, tmp, v.Y)
	digestWriteF64(h, tmp, v.Z)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
