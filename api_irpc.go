package fractal

// irpc bindings of the interfaces in api.go. The layout follows the output
// of the irpc generator: one service and one client per interface, and a
// request and a response struct per method, encoded with irpcgen.

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/marben/irpc/irpcgen"

	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

// ErrBadRect is returned when a decoded rectangle is empty, has negative
// coordinates or a side longer than scene.MaxImageSide.
var ErrBadRect = errors.New("bad image rectangle")

var _RendererIrpcId = []byte{
	0x5d, 0x1c, 0x93, 0x2e, 0x70, 0x4b, 0xa8, 0x16,
	0xe2, 0x39, 0x0f, 0xc4, 0x87, 0x5a, 0x21, 0xbd,
	0x64, 0x0e, 0xf1, 0x38, 0x9c, 0x47, 0x2a, 0xd5,
	0x13, 0x8e, 0x6b, 0xf0, 0x25, 0xc9, 0x74, 0x0a,
}

var _ImgProviderIrpcId = []byte{
	0xa3, 0x47, 0x0b, 0xd9, 0x16, 0xe5, 0x72, 0x3c,
	0x8f, 0x20, 0xb4, 0x59, 0xc1, 0x0d, 0x96, 0x4e,
	0x2b, 0xf8, 0x63, 0x17, 0xaa, 0x50, 0xdc, 0x81,
	0x39, 0x6e, 0x05, 0xbf, 0x92, 0x4a, 0x1d, 0xe7,
}

var _TileProviderIrpcId = []byte{
	0xc8, 0x02, 0x6f, 0x51, 0x3e, 0x97, 0xd4, 0x28,
	0x71, 0xab, 0x15, 0xe6, 0x4c, 0x3b, 0x80, 0xf2,
	0x0e, 0x59, 0xc3, 0x97, 0x24, 0x6d, 0xb1, 0x48,
	0xfa, 0x36, 0x8d, 0x12, 0x5f, 0xe0, 0x7b, 0x99,
}

// RENDERER

type RendererIrpcService struct {
	impl Renderer
}

func NewRendererIrpcService(impl Renderer) *RendererIrpcService {
	return &RendererIrpcService{
		impl: impl,
	}
}
func (s *RendererIrpcService) Id() []byte {
	return _RendererIrpcId
}
func (s *RendererIrpcService) GetFuncCall(funcId irpcgen.FuncId) (irpcgen.ArgDeserializer, error) {
	switch funcId {
	case 0: // RenderTile
		return func(d *irpcgen.Decoder) (irpcgen.FuncExecutor, error) {
			// DESERIALIZE
			var args renderTileReq
			if err := args.Deserialize(d); err != nil {
				return nil, err
			}
			return func(ctx context.Context) irpcgen.Serializable {
				// EXECUTE
				var resp renderTileResp
				resp.p0, resp.p1 = s.impl.RenderTile(ctx, args.s, args.tile, args.u)
				return resp
			}, nil
		}, nil
	default:
		return nil, fmt.Errorf("function '%d' doesn't exist on service '%s'", funcId, s.Id())
	}
}

// RendererIrpcClient implements Renderer
type RendererIrpcClient struct {
	endpoint irpcgen.Endpoint
}

func NewRendererIrpcClient(endpoint irpcgen.Endpoint) (*RendererIrpcClient, error) {
	if err := endpoint.RegisterClient(_RendererIrpcId); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &RendererIrpcClient{endpoint: endpoint}, nil
}
func (c *RendererIrpcClient) RenderTile(ctx context.Context, s scene.Scene, tile image.Rectangle, u viewport.Uniforms) (*image.RGBA, error) {
	var req = renderTileReq{
		s:    s,
		tile: tile,
		u:    u,
	}
	var resp renderTileResp
	if err := c.endpoint.CallRemoteFunc(ctx, _RendererIrpcId, 0, req, &resp); err != nil {
		return nil, err
	}
	return resp.p0, resp.p1
}

type renderTileReq struct {
	// ctx context.Context
	s    scene.Scene
	tile image.Rectangle
	u    viewport.Uniforms
}

func (s renderTileReq) Serialize(e *irpcgen.Encoder) error {
	if err := encScene(e, s.s); err != nil {
		return fmt.Errorf("serialize \"s\" of type scene.Scene: %w", err)
	}
	if err := encRect(e, s.tile); err != nil {
		return fmt.Errorf("serialize \"tile\" of type image.Rectangle: %w", err)
	}
	if err := encUniforms(e, s.u); err != nil {
		return fmt.Errorf("serialize \"u\" of type viewport.Uniforms: %w", err)
	}
	return nil
}
func (s *renderTileReq) Deserialize(d *irpcgen.Decoder) error {
	if err := decScene(d, &s.s); err != nil {
		return fmt.Errorf("deserialize s of type scene.Scene: %w", err)
	}
	if err := decRect(d, &s.tile); err != nil {
		return fmt.Errorf("deserialize tile of type image.Rectangle: %w", err)
	}
	if err := decUniforms(d, &s.u); err != nil {
		return fmt.Errorf("deserialize u of type viewport.Uniforms: %w", err)
	}
	return nil
}

type renderTileResp struct {
	p0 *image.RGBA
	p1 error
}

func (s renderTileResp) Serialize(e *irpcgen.Encoder) error {
	if err := encImage(e, s.p0); err != nil {
		return fmt.Errorf("serialize type *image.RGBA: %w", err)
	}
	if err := encError(e, s.p1); err != nil {
		return fmt.Errorf("serialize type error: %w", err)
	}
	return nil
}
func (s *renderTileResp) Deserialize(d *irpcgen.Decoder) error {
	if err := decImage(d, &s.p0); err != nil {
		return fmt.Errorf("deserialize type *image.RGBA: %w", err)
	}
	if err := decError(d, &s.p1); err != nil {
		return fmt.Errorf("deserialize type error: %w", err)
	}
	return nil
}

// IMG PROVIDER

type ImgProviderIrpcService struct {
	impl ImgProvider
}

func NewImgProviderIrpcService(impl ImgProvider) *ImgProviderIrpcService {
	return &ImgProviderIrpcService{
		impl: impl,
	}
}
func (s *ImgProviderIrpcService) Id() []byte {
	return _ImgProviderIrpcId
}
func (s *ImgProviderIrpcService) GetFuncCall(funcId irpcgen.FuncId) (irpcgen.ArgDeserializer, error) {
	switch funcId {
	case 0: // GetImage
		return func(d *irpcgen.Decoder) (irpcgen.FuncExecutor, error) {
			// DESERIALIZE
			var args irpcgen.EmptyDeserializable
			if err := args.Deserialize(d); err != nil {
				return nil, err
			}
			return func(ctx context.Context) irpcgen.Serializable {
				// EXECUTE
				var resp getImageResp
				resp.p0, resp.p1 = s.impl.GetImage(ctx)
				return resp
			}, nil
		}, nil
	default:
		return nil, fmt.Errorf("function '%d' doesn't exist on service '%s'", funcId, s.Id())
	}
}

// ImgProviderIrpcClient implements ImgProvider
type ImgProviderIrpcClient struct {
	endpoint irpcgen.Endpoint
}

func NewImgProviderIrpcClient(endpoint irpcgen.Endpoint) (*ImgProviderIrpcClient, error) {
	if err := endpoint.RegisterClient(_ImgProviderIrpcId); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &ImgProviderIrpcClient{endpoint: endpoint}, nil
}
func (c *ImgProviderIrpcClient) GetImage(ctx context.Context) (*image.RGBA, error) {
	var req = irpcgen.EmptySerializable{}
	var resp getImageResp
	if err := c.endpoint.CallRemoteFunc(ctx, _ImgProviderIrpcId, 0, req, &resp); err != nil {
		return nil, err
	}
	return resp.p0, resp.p1
}

type getImageResp struct {
	p0 *image.RGBA
	p1 error
}

func (s getImageResp) Serialize(e *irpcgen.Encoder) error {
	if err := encImage(e, s.p0); err != nil {
		return fmt.Errorf("serialize type *image.RGBA: %w", err)
	}
	if err := encError(e, s.p1); err != nil {
		return fmt.Errorf("serialize type error: %w", err)
	}
	return nil
}
func (s *getImageResp) Deserialize(d *irpcgen.Decoder) error {
	if err := decImage(d, &s.p0); err != nil {
		return fmt.Errorf("deserialize type *image.RGBA: %w", err)
	}
	if err := decError(d, &s.p1); err != nil {
		return fmt.Errorf("deserialize type error: %w", err)
	}
	return nil
}

// TILE PROVIDER

type TileProviderIrpcService struct {
	impl TileProvider
}

func NewTileProviderIrpcService(impl TileProvider) *TileProviderIrpcService {
	return &TileProviderIrpcService{
		impl: impl,
	}
}
func (s *TileProviderIrpcService) Id() []byte {
	return _TileProviderIrpcId
}
func (s *TileProviderIrpcService) GetFuncCall(funcId irpcgen.FuncId) (irpcgen.ArgDeserializer, error) {
	switch funcId {
	case 0: // Updates
		return func(d *irpcgen.Decoder) (irpcgen.FuncExecutor, error) {
			// DESERIALIZE
			var args updatesReq
			if err := args.Deserialize(d); err != nil {
				return nil, err
			}
			return func(ctx context.Context) irpcgen.Serializable {
				// EXECUTE
				var resp updatesResp
				resp.p0, resp.p1 = s.impl.Updates(ctx, args.frame, args.seen)
				return resp
			}, nil
		}, nil
	case 1: // Status
		return func(d *irpcgen.Decoder) (irpcgen.FuncExecutor, error) {
			// DESERIALIZE
			var args irpcgen.EmptyDeserializable
			if err := args.Deserialize(d); err != nil {
				return nil, err
			}
			return func(ctx context.Context) irpcgen.Serializable {
				// EXECUTE
				var resp statusResp
				resp.p0, resp.p1 = s.impl.Status(ctx)
				return resp
			}, nil
		}, nil
	default:
		return nil, fmt.Errorf("function '%d' doesn't exist on service '%s'", funcId, s.Id())
	}
}

// TileProviderIrpcClient implements TileProvider
type TileProviderIrpcClient struct {
	endpoint irpcgen.Endpoint
}

func NewTileProviderIrpcClient(endpoint irpcgen.Endpoint) (*TileProviderIrpcClient, error) {
	if err := endpoint.RegisterClient(_TileProviderIrpcId); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &TileProviderIrpcClient{endpoint: endpoint}, nil
}
func (c *TileProviderIrpcClient) Updates(ctx context.Context, frame uint32, seen int) (TileUpdate, error) {
	var req = updatesReq{
		frame: frame,
		seen:  seen,
	}
	var resp updatesResp
	if err := c.endpoint.CallRemoteFunc(ctx, _TileProviderIrpcId, 0, req, &resp); err != nil {
		return TileUpdate{}, err
	}
	return resp.p0, resp.p1
}
func (c *TileProviderIrpcClient) Status(ctx context.Context) (Status, error) {
	var req = irpcgen.EmptySerializable{}
	var resp statusResp
	if err := c.endpoint.CallRemoteFunc(ctx, _TileProviderIrpcId, 1, req, &resp); err != nil {
		return Status{}, err
	}
	return resp.p0, resp.p1
}

type updatesReq struct {
	// ctx context.Context
	frame uint32
	seen  int
}

func (s updatesReq) Serialize(e *irpcgen.Encoder) error {
	if err := irpcgen.EncUint32(e, s.frame); err != nil {
		return fmt.Errorf("serialize \"frame\" of type uint32: %w", err)
	}
	if err := irpcgen.EncInt(e, s.seen); err != nil {
		return fmt.Errorf("serialize \"seen\" of type int: %w", err)
	}
	return nil
}
func (s *updatesReq) Deserialize(d *irpcgen.Decoder) error {
	if err := irpcgen.DecUint32(d, &s.frame); err != nil {
		return fmt.Errorf("deserialize frame of type uint32: %w", err)
	}
	if err := irpcgen.DecInt(d, &s.seen); err != nil {
		return fmt.Errorf("deserialize seen of type int: %w", err)
	}
	return nil
}

type updatesResp struct {
	p0 TileUpdate
	p1 error
}

func (s updatesResp) Serialize(e *irpcgen.Encoder) error {
	if err := func(enc *irpcgen.Encoder, u TileUpdate) error {
		if err := irpcgen.EncUint32(enc, u.Frame); err != nil {
			return fmt.Errorf("serialize u.Frame of type uint32: %w", err)
		}
		if err := encRect(enc, u.Bounds); err != nil {
			return fmt.Errorf("serialize u.Bounds of type image.Rectangle: %w", err)
		}
		if err := irpcgen.EncInt(enc, u.Total); err != nil {
			return fmt.Errorf("serialize u.Total of type int: %w", err)
		}
		if err := irpcgen.EncInt(enc, u.First); err != nil {
			return fmt.Errorf("serialize u.First of type int: %w", err)
		}
		if err := irpcgen.EncSlice(enc, u.Tiles, "*image.RGBA", encImage); err != nil {
			return fmt.Errorf("serialize u.Tiles of type []*image.RGBA: %w", err)
		}
		return nil
	}(e, s.p0); err != nil {
		return fmt.Errorf("serialize type TileUpdate: %w", err)
	}
	if err := encError(e, s.p1); err != nil {
		return fmt.Errorf("serialize type error: %w", err)
	}
	return nil
}
func (s *updatesResp) Deserialize(d *irpcgen.Decoder) error {
	if err := func(dec *irpcgen.Decoder, u *TileUpdate) error {
		if err := irpcgen.DecUint32(dec, &u.Frame); err != nil {
			return fmt.Errorf("deserialize u.Frame of type uint32: %w", err)
		}
		if err := decRect(dec, &u.Bounds); err != nil {
			return fmt.Errorf("deserialize u.Bounds of type image.Rectangle: %w", err)
		}
		if err := irpcgen.DecInt(dec, &u.Total); err != nil {
			return fmt.Errorf("deserialize u.Total of type int: %w", err)
		}
		if err := irpcgen.DecInt(dec, &u.First); err != nil {
			return fmt.Errorf("deserialize u.First of type int: %w", err)
		}
		if err := irpcgen.DecSlice(dec, &u.Tiles, "*image.RGBA", decImage); err != nil {
			return fmt.Errorf("deserialize u.Tiles of type []*image.RGBA: %w", err)
		}
		for _, t := range u.Tiles {
			if t != nil && !t.Rect.In(u.Bounds) {
				return fmt.Errorf("%w: tile %v outside frame %v", ErrBadRect, t.Rect, u.Bounds)
			}
		}
		return nil
	}(d, &s.p0); err != nil {
		return fmt.Errorf("deserialize type TileUpdate: %w", err)
	}
	if err := decError(d, &s.p1); err != nil {
		return fmt.Errorf("deserialize type error: %w", err)
	}
	return nil
}

type statusResp struct {
	p0 Status
	p1 error
}

func (s statusResp) Serialize(e *irpcgen.Encoder) error {
	if err := func(enc *irpcgen.Encoder, st Status) error {
		if err := irpcgen.EncUint32(enc, st.Frame); err != nil {
			return fmt.Errorf("serialize st.Frame of type uint32: %w", err)
		}
		if err := encScene(enc, st.Scene); err != nil {
			return fmt.Errorf("serialize st.Scene of type scene.Scene: %w", err)
		}
		for _, v := range []int{st.Tiles, st.Finished} {
			if err := irpcgen.EncInt(enc, v); err != nil {
				return fmt.Errorf("serialize tile count: %w", err)
			}
		}
		if err := irpcgen.EncFloat32(enc, st.Progress); err != nil {
			return fmt.Errorf("serialize st.Progress of type float32: %w", err)
		}
		for _, v := range []int{st.Workers, st.Clients} {
			if err := irpcgen.EncInt(enc, v); err != nil {
				return fmt.Errorf("serialize worker count: %w", err)
			}
		}
		return nil
	}(e, s.p0); err != nil {
		return fmt.Errorf("serialize type Status: %w", err)
	}
	if err := encError(e, s.p1); err != nil {
		return fmt.Errorf("serialize type error: %w", err)
	}
	return nil
}
func (s *statusResp) Deserialize(d *irpcgen.Decoder) error {
	if err := func(dec *irpcgen.Decoder, st *Status) error {
		if err := irpcgen.DecUint32(dec, &st.Frame); err != nil {
			return fmt.Errorf("deserialize st.Frame of type uint32: %w", err)
		}
		if err := decScene(dec, &st.Scene); err != nil {
			return fmt.Errorf("deserialize st.Scene of type scene.Scene: %w", err)
		}
		for _, v := range []*int{&st.Tiles, &st.Finished} {
			if err := irpcgen.DecInt(dec, v); err != nil {
				return fmt.Errorf("deserialize tile count: %w", err)
			}
		}
		if err := irpcgen.DecFloat32(dec, &st.Progress); err != nil {
			return fmt.Errorf("deserialize st.Progress of type float32: %w", err)
		}
		for _, v := range []*int{&st.Workers, &st.Clients} {
			if err := irpcgen.DecInt(dec, v); err != nil {
				return fmt.Errorf("deserialize worker count: %w", err)
			}
		}
		return nil
	}(d, &s.p0); err != nil {
		return fmt.Errorf("deserialize type Status: %w", err)
	}
	if err := decError(d, &s.p1); err != nil {
		return fmt.Errorf("deserialize type error: %w", err)
	}
	return nil
}

// SHARED TYPES

// checkRect accepts the rectangles of frames and tiles: non-empty, inside
// the positive quadrant and no larger than the biggest valid scene.
func checkRect(r image.Rectangle) error {
	if r.Empty() || r.Min.X < 0 || r.Min.Y < 0 ||
		r.Max.X > scene.MaxImageSide || r.Max.Y > scene.MaxImageSide {
		return fmt.Errorf("%w: %v", ErrBadRect, r)
	}
	return nil
}

func encRect(enc *irpcgen.Encoder, r image.Rectangle) error {
	for _, v := range [4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y} {
		if err := irpcgen.EncInt(enc, v); err != nil {
			return err
		}
	}
	return nil
}

// decRect decodes a rectangle and rejects it unless checkRect accepts it.
func decRect(dec *irpcgen.Decoder, r *image.Rectangle) error {
	for _, v := range [4]*int{&r.Min.X, &r.Min.Y, &r.Max.X, &r.Max.Y} {
		if err := irpcgen.DecInt(dec, v); err != nil {
			return err
		}
	}
	return checkRect(*r)
}

// encImage writes the bounds of img followed by its pixels, row by row
// with no padding.
func encImage(enc *irpcgen.Encoder, img *image.RGBA) error {
	isNil := img == nil
	if err := irpcgen.EncIsNil(enc, isNil); err != nil {
		return fmt.Errorf("serialize isNil == %t: %w", isNil, err)
	}
	if isNil {
		return nil
	}
	r := img.Rect
	if err := encRect(enc, r); err != nil {
		return fmt.Errorf("serialize img.Rect of type image.Rectangle: %w", err)
	}

	rowLen := 4 * r.Dx()
	pix := img.Pix
	if img.Stride == rowLen {
		pix = pix[:min(len(pix), rowLen*r.Dy())]
	} else {
		pix = make([]byte, 0, rowLen*r.Dy())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := img.PixOffset(r.Min.X, y)
			pix = append(pix, img.Pix[i:i+rowLen]...)
		}
	}
	if err := irpcgen.EncByteSlice(enc, pix); err != nil {
		return fmt.Errorf("serialize img.Pix of type []byte: %w", err)
	}
	return nil
}

// decImage validates the bounds before it reads the pixels.
func decImage(dec *irpcgen.Decoder, img **image.RGBA) error {
	var isNil bool
	if err := irpcgen.DecIsNil(dec, &isNil); err != nil {
		return fmt.Errorf("deserialize isNil: %w", err)
	}
	if isNil {
		*img = nil
		return nil
	}
	var r image.Rectangle
	if err := decRect(dec, &r); err != nil {
		return fmt.Errorf("deserialize img.Rect of type image.Rectangle: %w", err)
	}
	var pix []byte
	if err := irpcgen.DecByteSlice(dec, &pix); err != nil {
		return fmt.Errorf("deserialize img.Pix of type []byte: %w", err)
	}
	if len(pix) != 4*r.Dx()*r.Dy() {
		return fmt.Errorf("%w: %d bytes of pixels for %v", ErrBadRect, len(pix), r)
	}
	*img = &image.RGBA{Pix: pix, Stride: 4 * r.Dx(), Rect: r}
	return nil
}

func encUniforms(enc *irpcgen.Encoder, u viewport.Uniforms) error {
	for _, v := range [2]int{u.Resolution.X, u.Resolution.Y} {
		if err := irpcgen.EncInt(enc, v); err != nil {
			return fmt.Errorf("serialize u.Resolution of type image.Point: %w", err)
		}
	}
	for _, v := range [3]float64{u.Time, u.Mouse[0], u.Mouse[1]} {
		if err := irpcgen.EncFloat64(enc, v); err != nil {
			return fmt.Errorf("serialize uniform of type float64: %w", err)
		}
	}
	return nil
}

func decUniforms(dec *irpcgen.Decoder, u *viewport.Uniforms) error {
	for _, v := range [2]*int{&u.Resolution.X, &u.Resolution.Y} {
		if err := irpcgen.DecInt(dec, v); err != nil {
			return fmt.Errorf("deserialize u.Resolution of type image.Point: %w", err)
		}
	}
	for _, v := range [3]*float64{&u.Time, &u.Mouse[0], &u.Mouse[1]} {
		if err := irpcgen.DecFloat64(dec, v); err != nil {
			return fmt.Errorf("deserialize uniform of type float64: %w", err)
		}
	}
	return nil
}

func encScene(enc *irpcgen.Encoder, s scene.Scene) error {
	for _, v := range []string{s.Name, s.Preset, s.Mode, s.Region, s.Animation.Kind, s.Trap.Kind, s.Palette.Kind} {
		if err := irpcgen.EncString(enc, v); err != nil {
			return fmt.Errorf("serialize scene field of type string: %w", err)
		}
	}
	for _, v := range []int{s.Width, s.Height, s.TileSize, s.Supersample, s.MaxIter, s.Branch.Depth} {
		if err := irpcgen.EncInt(enc, v); err != nil {
			return fmt.Errorf("serialize scene field of type int: %w", err)
		}
	}
	if err := irpcgen.EncBool(enc, s.Julia); err != nil {
		return fmt.Errorf("serialize s.Julia of type bool: %w", err)
	}
	p, b := s.Palette, s.Branch
	floats := []float64{
		s.Bailout, s.Seed[0], s.Seed[1], s.C[0], s.C[1], s.Center[0], s.Center[1], s.Zoom,
		s.Animation.Radius, s.Animation.Speed,
		s.Trap.Center[0], s.Trap.Center[1], s.Trap.Radius,
		p.Base[0], p.Base[1], p.Base[2], p.Freq[0], p.Freq[1], p.Freq[2],
		p.Phase[0], p.Phase[1], p.Phase[2], p.Scale, p.Width, p.Falloff,
		b.Angle, b.Shrink, b.Length, b.Sway, b.Width,
	}
	for _, v := range floats {
		if err := irpcgen.EncFloat64(enc, v); err != nil {
			return fmt.Errorf("serialize scene field of type float64: %w", err)
		}
	}
	return nil
}

func decScene(dec *irpcgen.Decoder, s *scene.Scene) error {
	for _, v := range []*string{&s.Name, &s.Preset, &s.Mode, &s.Region, &s.Animation.Kind, &s.Trap.Kind, &s.Palette.Kind} {
		if err := irpcgen.DecString(dec, v); err != nil {
			return fmt.Errorf("deserialize scene field of type string: %w", err)
		}
	}
	for _, v := range []*int{&s.Width, &s.Height, &s.TileSize, &s.Supersample, &s.MaxIter, &s.Branch.Depth} {
		if err := irpcgen.DecInt(dec, v); err != nil {
			return fmt.Errorf("deserialize scene field of type int: %w", err)
		}
	}
	if err := irpcgen.DecBool(dec, &s.Julia); err != nil {
		return fmt.Errorf("deserialize s.Julia of type bool: %w", err)
	}
	p, b := &s.Palette, &s.Branch
	floats := []*float64{
		&s.Bailout, &s.Seed[0], &s.Seed[1], &s.C[0], &s.C[1], &s.Center[0], &s.Center[1], &s.Zoom,
		&s.Animation.Radius, &s.Animation.Speed,
		&s.Trap.Center[0], &s.Trap.Center[1], &s.Trap.Radius,
		&p.Base[0], &p.Base[1], &p.Base[2], &p.Freq[0], &p.Freq[1], &p.Freq[2],
		&p.Phase[0], &p.Phase[1], &p.Phase[2], &p.Scale, &p.Width, &p.Falloff,
		&b.Angle, &b.Shrink, &b.Length, &b.Sway, &b.Width,
	}
	for _, v := range floats {
		if err := irpcgen.DecFloat64(dec, v); err != nil {
			return fmt.Errorf("deserialize scene field of type float64: %w", err)
		}
	}
	return nil
}

func encError(enc *irpcgen.Encoder, v error) error {
	isNil := v == nil
	if err := irpcgen.EncIsNil(enc, isNil); err != nil {
		return fmt.Errorf("serialize isNil == %t: %w", isNil, err)
	}
	if isNil {
		return nil
	}
	if err := irpcgen.EncString(enc, v.Error()); err != nil {
		return fmt.Errorf("serialize \"v.Error()\" of type string: %w", err)
	}
	return nil
}

func decError(dec *irpcgen.Decoder, s *error) error {
	var isNil bool
	if err := irpcgen.DecIsNil(dec, &isNil); err != nil {
		return fmt.Errorf("deserialize isNil: %w", err)
	}
	if isNil {
		*s = nil
		return nil
	}
	var impl remoteError
	if err := irpcgen.DecString(dec, &impl.msg); err != nil {
		return fmt.Errorf("deserialize \"msg\" string: %w", err)
	}
	*s = impl
	return nil
}

// remoteError carries the message of an error returned on the other side
// of an endpoint.
type remoteError struct {
	msg string
}

func (e remoteError) Error() string {
	return e.msg
}
