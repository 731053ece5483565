package domain

import (
	"fmt"
	"strings"
)

type Network string

const (
	NetworkFacebook  Network = "facebook"
	NetworkInstagram Network = "instagram"
	NetworkLinkedIn  Network = "linkedin"
	NetworkTwitter   Network = "twitter"
	NetworkYouTube   Network = "youtube"
	NetworkTikTok    Network = "tiktok"
	NetworkThreads   Network = "threads"
)

var networkDisplayNames = map[Network]string{
	NetworkFacebook:  "Facebook",
	NetworkInstagram: "Instagram",
	NetworkLinkedIn:  "LinkedIn",
	NetworkTwitter:   "Twitter",
	NetworkYouTube:   "YouTube",
	NetworkTikTok:    "TikTok",
	NetworkThreads:   "Threads",
}

// Networks lists every supported network in display order.
func Networks() []Network {
	return []Network{
		NetworkFacebook,
		NetworkInstagram,
		NetworkLinkedIn,
		NetworkTwitter,
		NetworkYouTube,
		NetworkTikTok,
		NetworkThreads,
	}
}

func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := networkDisplayNames[n]; !ok {
		return "", fmt.Errorf("unknown network: %s", s)
	}
	return n, nil
}

// DisplayName returns the human readable name used in the Network column and sheet names.
func (n Network) DisplayName() string {
	if name, ok := networkDisplayNames[n]; ok {
		return name
	}
	return string(n)
}

// Profile is a customer-owned account on a network.
type Profile struct {
	ID   string
	Name string
}
