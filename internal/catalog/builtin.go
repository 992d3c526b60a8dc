package catalog

import "github.com/verte-zerg/digita/internal/model"

var builtin = []model.ReferenceText{
	{
		ID:         1,
		Difficulty: model.Facil,
		Body:       "O Brasil é um país de dimensões continentais. A tecnologia transformou a forma como trabalhamos. É importante desenvolver habilidades de digitação. A prática constante traz bons resultados.",
		AudioCue:   "/audio/facil-1.mp3",
	},
	{
		ID:         2,
		Difficulty: model.Facil,
		Body:       "A comunicação é essencial no ambiente de trabalho. Escrever bem demonstra profissionalismo. Cada palavra conta na hora de passar uma mensagem. A clareza é fundamental para o sucesso.",
		AudioCue:   "/audio/facil-2.mp3",
	},
	{
		ID:         3,
		Difficulty: model.Facil,
		Body:       "O computador facilita muito nosso dia a dia. Saber digitar rápido economiza tempo. Todos podem melhorar com dedicação. A tecnologia está presente em tudo.",
		AudioCue:   "/audio/facil-3.mp3",
	},
	{
		ID:         4,
		Difficulty: model.Medio,
		Body:       "A transformação digital revolucionou o mercado de trabalho, exigindo profissionais cada vez mais qualificados. As empresas buscam colaboradores com excelente domínio da língua portuguesa e agilidade na digitação. A comunicação escrita precisa ser clara, objetiva e sem erros ortográficos. Investir no desenvolvimento dessas competências é essencial para o sucesso profissional.",
		AudioCue:   "/audio/medio-1.mp3",
	},
	{
		ID:         5,
		Difficulty: model.Medio,
		Body:       "A gestão eficiente de projetos requer planejamento, organização e comunicação assertiva. Os relatórios devem ser elaborados com precisão, utilizando a norma culta da língua portuguesa. A atenção aos detalhes, como pontuação e acentuação, demonstra profissionalismo. Dominar essas habilidades contribui significativamente para o crescimento na carreira.",
		AudioCue:   "/audio/medio-2.mp3",
	},
	{
		ID:         6,
		Difficulty: model.Medio,
		Body:       "O ambiente corporativo contemporâneo valoriza profissionais que dominam ferramentas tecnológicas e possuem excelente redação. A capacidade de expressar ideias com clareza e correção gramatical diferencia candidatos em processos seletivos. Desenvolver essas competências requer dedicação, estudo e prática contínua.",
		AudioCue:   "/audio/medio-3.mp3",
	},
	{
		ID:         7,
		Difficulty: model.Dificil,
		Body:       "As políticas macroeconômicas influenciam diretamente o desenvolvimento socioeconômico das nações. A implementação de estratégias sustentáveis requer análise criteriosa dos cenários político-administrativos. É imprescindível que os profissionais desenvolvam competências técnicas e comportamentais alinhadas às exigências contemporâneas. A excelência na comunicação escrita diferencia profissionais no mercado globalizado.",
		AudioCue:   "/audio/dificil-1.mp3",
	},
	{
		ID:         8,
		Difficulty: model.Dificil,
		Body:       "A governança corporativa estabelece diretrizes para a administração transparente e ética das organizações. Os stakeholders demandam relatórios financeiros elaborados com rigor técnico e conformidade regulatória. A redação empresarial deve primar pela objetividade, coesão e correção gramatical. Profissionais que dominam essas competências destacam-se pela capacidade de agregar valor estratégico às corporações multinacionais.",
		AudioCue:   "/audio/dificil-2.mp3",
	},
	{
		ID:         9,
		Difficulty: model.Dificil,
		Body:       "A conjuntura geopolítica contemporânea demanda profissionais com visão sistêmica e capacidade analítica apurada. As organizações internacionais buscam colaboradores cujas competências linguísticas e técnicas estejam alinhadas aos padrões internacionais de excelência. O domínio da norma culta, aliado à precisão terminológica, constitui diferencial competitivo no mercado de trabalho globalizado e altamente especializado.",
		AudioCue:   "/audio/dificil-3.mp3",
	},
}

// Builtin returns a copy of the built-in texts.
func Builtin() []model.ReferenceText {
	out := make([]model.ReferenceText, len(builtin))
	copy(out, builtin)
	return out
}
