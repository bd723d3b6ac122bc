// Command imagetoolbox - CLI утилита для пакетной обработки изображений.
package main

import "github.com/artemshloyda/imagetoolbox/internal/cli"

func main() {
	cli.Execute()
}
