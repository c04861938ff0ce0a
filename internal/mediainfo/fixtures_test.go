package mediainfo

const mp4Report = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'sample.mp4':
  Metadata:
    major_brand     : isom
    minor_version   : 512
    compatible_brands: isomiso2avc1mp41
    encoder         : Lavf58.29.100
  Duration: 00:00:10.00, start: 0.000000, bitrate: 1205 kb/s
  Stream #0:0(und): Video: h264 (High) (avc1 / 0x31637661), yuv420p(tv, bt709), 1920x1080 [SAR 1:1 DAR 16:9], 1071 kb/s, 30 fps, 30 tbr, 15360 tbn, 60 tbc (default)
    Metadata:
      handler_name    : VideoHandler
      vendor_id       : [0][0][0][0]
    Side data:
      cpb: bitrate max/min/avg: 0/0/0 buffer size: 0 vbv_delay: N/A
  Stream #0:1(und): Audio: aac (LC) (mp4a / 0x6134706D), 44100 Hz, stereo, fltp, 128 kb/s (default)
    Metadata:
      handler_name    : SoundHandler
      vendor_id       : [0][0][0][0]
At least one output file must be specified
`

const mp3Report = `Input #0, mp3, from 'song.mp3':
  Metadata:
    title           : Song
    artist          : Band
    title           : Song (Remastered)
  Duration: 00:03:25.47, start: 0.025057, bitrate: 320 kb/s
  Stream #0:0: Audio: mp3, 44100 Hz, stereo, fltp, 320 kb/s
At least one output file must be specified
`

const pngReport = `Input #0, png_pipe, from 'cover.png':
  Duration: N/A, bitrate: N/A
  Stream #0:0: Video: png, rgba(pc), 640x480, 25 fps, 25 tbr, 25 tbn, 25 tbc
At least one output file must be specified
`

const mkvSurroundReport = "Input #0, matroska,webm, from 'movie.mkv':\r\n" +
	"  Duration: 01:42:07.52, start: 0.000000, bitrate: 9043 kb/s\r\n" +
	"  Stream #0:0: Video: hevc (Main 10), yuv420p10le(tv), 3840x1608, SAR 1:1 DAR 40:17, 23.98 fps, 23.98 tbr, 1k tbn\r\n" +
	"  Stream #0:1(eng): Audio: ac3, 48000 Hz, 5.1(side), fltp, 448 kb/s (default)\r\n" +
	"At least one output file must be specified\r\n"

const h264VideoLine = "Stream #0:0: Video: h264 (High), yuv420p, 1920x1080 [SAR 1:1 DAR 16:9], 30 fps, 30 tbr, 1k tbn, 60 tbc"

const aacAudioLine = "Stream #0:1: Audio: aac, 44100 Hz, stereo, fltp, 128 kb/s"
