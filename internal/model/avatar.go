package model

import "slices"

type Avatar string

const (
	AvatarBear      Avatar = "bear"
	AvatarBird      Avatar = "bird"
	AvatarButterfly Avatar = "butterfly"
	AvatarCat       Avatar = "cat"
	AvatarDolphin   Avatar = "dolphin"
	AvatarElephant  Avatar = "elephant"
	AvatarFrog      Avatar = "frog"
	AvatarHorse     Avatar = "horse"
	AvatarKangaroo  Avatar = "kangaroo"
	AvatarKoala     Avatar = "koala"
	AvatarMonkey    Avatar = "monkey"
	AvatarRabbit    Avatar = "rabbit"
	AvatarSloth     Avatar = "sloth"
)

// DefaultAvatar is what a fresh client session starts with.
const DefaultAvatar = AvatarBear

var avatars = []Avatar{
	AvatarBear,
	AvatarBird,
	AvatarButterfly,
	AvatarCat,
	AvatarDolphin,
	AvatarElephant,
	AvatarFrog,
	AvatarHorse,
	AvatarKangaroo,
	AvatarKoala,
	AvatarMonkey,
	AvatarRabbit,
	AvatarSloth,
}

// Avatars returns the closed set of avatars in display order.
func Avatars() []Avatar {
	return slices.Clone(avatars)
}

func (a Avatar) Valid() bool {
	return slices.Contains(avatars, a)
}

// ImagePath is where the static server exposes the avatar picture.
func (a Avatar) ImagePath() string {
	return "/img/" + string(a) + ".png"
}
