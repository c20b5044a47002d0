package domain

// Identity — непрозрачный идентификатор аутентифицированного клиента.
// Выдаётся внешним каталогом, внутренняя структура не предполагается.
type Identity string

func (i Identity) String() string { return string(i) }

// Short возвращает префикс для дефолтного никнейма user-<short>.
func (i Identity) Short() string {
	const n = 8
	if len(i) <= n {
		return string(i)
	}
	return string(i[:n])
}
