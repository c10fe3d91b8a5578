package wave

import "image"

// PackRGBA converts a frame to the straight-alpha byte layout ffmpeg's
// rawvideo rgba pixel format expects: 4 bytes per pixel, row-major,
// top-to-bottom. image.RGBA stores premultiplied alpha, so partially
// covered pixels are un-premultiplied here.
//
// dst is reused when large enough; the returned slice is exactly one
// frame long.
func PackRGBA(dst []byte, img *image.RGBA) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	need := width * height * 4

	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]

	di := 0
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width*4; x += 4 {
			a := row[x+3]
			switch a {
			case 0:
				dst[di] = 0
				dst[di+1] = 0
				dst[di+2] = 0
				dst[di+3] = 0
			case 0xff:
				dst[di] = row[x]
				dst[di+1] = row[x+1]
				dst[di+2] = row[x+2]
				dst[di+3] = 0xff
			default:
				dst[di] = unmultiply(row[x], a)
				dst[di+1] = unmultiply(row[x+1], a)
				dst[di+2] = unmultiply(row[x+2], a)
				dst[di+3] = a
			}
			di += 4
		}
	}
	return dst
}

func unmultiply(c, a uint8) uint8 {
	return uint8((uint32(c)*0xff + uint32(a)/2) / uint32(a))
}
