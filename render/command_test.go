// Copyright 2026 Gustavo C. Viegas. All rights reserved.

package render

import "testing"

func TestRenderCommandTypeRoundTrip(t *testing.T) {
	for _, topo := range []Topology{
		TopologyTriangleList,
		TopologyTriangleStrip,
		TopologyLineList,
		TopologyLineStrip,
		TopologyPointList,
	} {
		ct := RenderCommandType(topo)
		got, ok := ct.IsRender()
		if !ok {
			t.Fatalf("CommandType(%d).IsRender: unexpected false", ct)
		}
		if got != topo {
			t.Fatalf("CommandType.IsRender:\nhave %d\nwant %d", got, topo)
		}
	}
}

func TestNonRenderCommandType(t *testing.T) {
	if _, ok := CmdClear.IsRender(); ok {
		t.Fatal("CmdClear.IsRender: unexpected true")
	}
	if _, ok := CmdViewport.IsRender(); ok {
		t.Fatal("CmdViewport.IsRender: unexpected true")
	}
}

func TestIndexCount(t *testing.T) {
	for _, x := range [...]struct {
		topo  Topology
		count int
		want  int
	}{
		{TopologyTriangleList, 10, 30},
		{TopologyTriangleStrip, 10, 12},
		{TopologyLineList, 5, 10},
		{TopologyLineStrip, 5, 6},
		{TopologyPointList, 7, 7},
	} {
		if n := IndexCount(x.topo, x.count); n != x.want {
			t.Fatalf("IndexCount(%d, %d):\nhave %d\nwant %d", x.topo, x.count, n, x.want)
		}
	}
}
