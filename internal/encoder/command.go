package encoder

import "strconv"

// BuildArgs builds the ffmpeg argument list for an encoder run: raw RGBA
// frames on stdin, optional audio as a second input, and an alpha-capable
// codec chosen by Params.Codec.
func BuildArgs(p *Params) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "level+info",
		"-y",

		// Raw frame stream on stdin
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", strconv.Itoa(p.Width) + "x" + strconv.Itoa(p.Height),
		"-framerate", strconv.Itoa(p.FPS),
		"-i", "pipe:0",
	}

	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath)
	}

	switch p.Codec {
	case CodecQTRLE:
		args = append(args, "-c:v", "qtrle", "-pix_fmt", "argb")
	case CodecVP9:
		args = append(args, "-c:v", "libvpx-vp9", "-pix_fmt", "yuva420p", "-b:v", "0", "-crf", "30")
	default: // CodecProRes
		args = append(args, "-c:v", "prores_ks", "-profile:v", "4444", "-pix_fmt", "yuva444p10le")
	}

	if p.AudioPath != "" {
		if p.Codec == CodecVP9 {
			args = append(args, "-c:a", "libopus")
		} else {
			args = append(args, "-c:a", "aac")
		}
		// Stop at the shorter input so trailing audio never pads the video
		args = append(args, "-shortest")
	}

	args = append(args, p.OutputPath)
	return args
}
