package common

const KindImages = "images"
const KindAudio = "audio"
const KindVideo = "video"

var AllKinds = []string{KindImages, KindAudio, KindVideo}

func IsMediaKind(kind string) bool {
	for _, k := range AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}
