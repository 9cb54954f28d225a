package ppu

import (
	"bytes"
	"encoding/gob"
)

// objEntrySnap and objPixelSnap mirror the unexported objEntry/objPixel
// structs with exported fields, since encoding/gob only encodes exported
// struct fields.
type objEntrySnap struct {
	Y, X, Index byte
}

type objPixelSnap struct {
	Color, Palette byte
	BgOverObj      bool
}

func toEntrySnap(es []objEntry) []objEntrySnap {
	out := make([]objEntrySnap, len(es))
	for i, e := range es {
		out[i] = objEntrySnap{Y: e.y, X: e.x, Index: e.index}
	}
	return out
}

func fromEntrySnap(es []objEntrySnap) []objEntry {
	out := make([]objEntry, len(es))
	for i, e := range es {
		out[i] = objEntry{y: e.Y, x: e.X, index: e.Index}
	}
	return out
}

func toPixelSnap(ps []objPixel) []objPixelSnap {
	out := make([]objPixelSnap, len(ps))
	for i, p := range ps {
		out[i] = objPixelSnap{Color: p.color, Palette: p.palette, BgOverObj: p.bgOverObj}
	}
	return out
}

func fromPixelSnap(ps []objPixelSnap) []objPixel {
	out := make([]objPixel, len(ps))
	for i, p := range ps {
		out[i] = objPixel{color: p.Color, palette: p.Palette, bgOverObj: p.BgOverObj}
	}
	return out
}

type snapshot struct {
	VRAM               [0x2000]byte
	OAM                [0xA0]byte
	LCDC, STAT         byte
	SCY, SCX           byte
	LY, LYC            byte
	BGP, OBP0, OBP1    byte
	WY, WX             byte
	Dot                int
	Mode               Mode
	WindowLine         int
	WindowUsedThisLine bool
	StatLine           bool

	Scanned     []objEntrySnap
	PendingObjs []objEntrySnap
	CurObj      objEntrySnap

	BgFifo  []byte
	ObjFifo []objPixelSnap

	BgStep      bgFetchStep
	ObjStep     objFetchStep
	FetchingObj bool

	BgTileAddr, BgRowAddr uint16
	BgTileID              byte
	BgRowLow, BgRowHigh   byte

	ObjRowAddr            uint16
	ObjID, ObjFlags       byte
	ObjRowLow, ObjRowHigh byte

	BgX, DrawX, BgDiscard int
	InsideWindow          bool
}

func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(snapshot{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx,
		LY: p.ly, LYC: p.lyc, BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
		WY: p.wy, WX: p.wx, Dot: p.dot, Mode: p.mode,
		WindowLine: p.windowLine, WindowUsedThisLine: p.windowUsedThisLine,
		StatLine: p.statLine,

		Scanned:     toEntrySnap(p.scanned),
		PendingObjs: toEntrySnap(p.pendingObjs),
		CurObj:      objEntrySnap{Y: p.curObj.y, X: p.curObj.x, Index: p.curObj.index},

		BgFifo:  append([]byte(nil), p.bgFifo...),
		ObjFifo: toPixelSnap(p.objFifo),

		BgStep: p.bgStep, ObjStep: p.objStep, FetchingObj: p.fetchingObj,

		BgTileAddr: p.bgTileAddr, BgRowAddr: p.bgRowAddr,
		BgTileID: p.bgTileID, BgRowLow: p.bgRowLow, BgRowHigh: p.bgRowHigh,

		ObjRowAddr: p.objRowAddr,
		ObjID:      p.objID, ObjFlags: p.objFlags,
		ObjRowLow: p.objRowLow, ObjRowHigh: p.objRowHigh,

		BgX: p.bgX, DrawX: p.drawX, BgDiscard: p.bgDiscard,
		InsideWindow: p.insideWindow,
	})
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	p.vram, p.oam = s.VRAM, s.OAM
	p.lcdc, p.stat, p.scy, p.scx = s.LCDC, s.STAT, s.SCY, s.SCX
	p.ly, p.lyc, p.bgp, p.obp0, p.obp1 = s.LY, s.LYC, s.BGP, s.OBP0, s.OBP1
	p.wy, p.wx, p.dot, p.mode = s.WY, s.WX, s.Dot, s.Mode
	p.windowLine, p.windowUsedThisLine = s.WindowLine, s.WindowUsedThisLine
	p.statLine = s.StatLine

	p.scanned = fromEntrySnap(s.Scanned)
	p.pendingObjs = fromEntrySnap(s.PendingObjs)
	p.curObj = objEntry{y: s.CurObj.Y, x: s.CurObj.X, index: s.CurObj.Index}

	p.bgFifo = append([]byte(nil), s.BgFifo...)
	p.objFifo = fromPixelSnap(s.ObjFifo)

	p.bgStep, p.objStep, p.fetchingObj = s.BgStep, s.ObjStep, s.FetchingObj

	p.bgTileAddr, p.bgRowAddr = s.BgTileAddr, s.BgRowAddr
	p.bgTileID, p.bgRowLow, p.bgRowHigh = s.BgTileID, s.BgRowLow, s.BgRowHigh

	p.objRowAddr = s.ObjRowAddr
	p.objID, p.objFlags = s.ObjID, s.ObjFlags
	p.objRowLow, p.objRowHigh = s.ObjRowLow, s.ObjRowHigh

	p.bgX, p.drawX, p.bgDiscard = s.BgX, s.DrawX, s.BgDiscard
	p.insideWindow = s.InsideWindow
}
