package platform

var builtin = []Platform{
	{Name: "YouTube", Template: "https://www.youtube.com/{}"},
	{Name: "Twitter", Template: "https://twitter.com/{}"},
	{Name: "Instagram", Template: "https://www.instagram.com/{}/"},
	{Name: "LinkedIn", Template: "https://www.linkedin.com/in/{}/"},
	{Name: "Facebook", Template: "https://www.facebook.com/{}"},
	{Name: "TikTok", Template: "https://www.tiktok.com/@{}"},
	{Name: "Pinterest", Template: "https://www.pinterest.com/{}"},
	{Name: "Snapchat", Template: "https://www.snapchat.com/add/{}"},
	{Name: "Reddit", Template: "https://www.reddit.com/user/{}"},
	{Name: "GitHub", Template: "https://github.com/{}"},
	{Name: "Medium", Template: "https://medium.com/@{}"},
	{Name: "Tumblr", Template: "https://{}.tumblr.com"},
	{Name: "Vimeo", Template: "https://vimeo.com/{}"},
	{Name: "Twitch", Template: "https://www.twitch.tv/{}"},
	{Name: "Spotify", Template: "https://open.spotify.com/user/{}"},
	{Name: "Quora", Template: "https://www.quora.com/profile/{}"},
	{Name: "Discord", Template: "https://discordapp.com/users/{}"},
	{Name: "SoundCloud", Template: "https://soundcloud.com/{}"},
	{Name: "Periscope", Template: "https://www.pscp.tv/{}"},
	{Name: "Flickr", Template: "https://www.flickr.com/photos/{}"},
	{Name: "Steam", Template: "https://steamcommunity.com/id/{}"},
	{Name: "Patreon", Template: "https://www.patreon.com/{}"},
	{Name: "Amazon", Template: "https://www.amazon.com/shops/{}"},
}

// Builtin returns the registry compiled into the binary.
func Builtin() *Registry {
	r, err := NewRegistry(builtin)
	if err != nil {
		// The table above is static.
		panic(err)
	}
	return r
}
